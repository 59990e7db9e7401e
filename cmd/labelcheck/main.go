// Command labelcheck is a desktop shell over review.Session: it shows the
// captioned preview and label of one record at a time and lets the
// reviewer fix or drop labels before exporting.
//
// Shortcuts: Ctrl+Left / Ctrl+Right step through records, Ctrl+S saves the
// label, Delete drops the record.
package main

import (
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cvdata-tools/internal/config"
	"github.com/ironsheep/cvdata-tools/internal/imaging"
	"github.com/ironsheep/cvdata-tools/internal/review"
)

// maxPreview bounds the decoded preview kept in memory for display.
const maxPreview = 1600

type checker struct {
	session *review.Session
	window  fyne.Window

	preview  *canvas.Image
	label    *widget.Entry
	progress *widget.Slider
	position *widget.Label

	// syncing suppresses slider callbacks while the view is refreshed.
	syncing bool
}

func newChecker(w fyne.Window, s *review.Session) *checker {
	c := &checker{session: s, window: w}

	c.preview = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	c.preview.FillMode = canvas.ImageFillContain

	c.label = widget.NewMultiLineEntry()
	c.label.Wrapping = fyne.TextWrapWord
	c.label.SetMinRowsVisible(4)

	c.progress = widget.NewSlider(1, 1)
	c.progress.Step = 1
	c.progress.OnChanged = func(v float64) {
		if c.syncing {
			return
		}
		if c.session.Seek(int(v)) {
			c.show()
		}
	}
	c.position = widget.NewLabel("0/0")
	c.position.Alignment = fyne.TextAlignCenter
	return c
}

func (c *checker) content() fyne.CanvasObject {
	saveBtn := widget.NewButton("Save", c.save)
	saveBtn.Importance = widget.HighImportance
	deleteBtn := widget.NewButton("Delete", c.delete)
	deleteBtn.Importance = widget.DangerImportance

	controls := container.NewBorder(
		nil,
		container.NewVBox(
			container.NewHBox(saveBtn, deleteBtn),
			container.NewHBox(widget.NewButton("Previous", c.prev), widget.NewButton("Next", c.next)),
			c.progress,
			c.position,
		),
		nil, nil,
		c.label,
	)

	split := container.NewHSplit(c.preview, controls)
	split.Offset = 0.75
	return split
}

func (c *checker) menu() *fyne.MainMenu {
	return fyne.NewMainMenu(fyne.NewMenu("File",
		fyne.NewMenuItem("Import...", c.importFile),
		fyne.NewMenuItem("Export...", c.exportFile),
	))
}

func (c *checker) bindShortcuts() {
	cv := c.window.Canvas()
	cv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyLeft, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { c.prev() })
	cv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyRight, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { c.next() })
	cv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { c.save() })
	cv.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyDelete {
			c.delete()
		}
	})
}

// show refreshes every widget from the session.
func (c *checker) show() {
	rec, err := c.session.Current()
	pos, total := c.session.Position()

	c.syncing = true
	if total > 0 {
		c.progress.Max = float64(total)
		c.progress.SetValue(float64(pos))
	}
	c.syncing = false
	c.position.SetText(fmt.Sprintf("%d/%d", pos, total))

	if err != nil {
		c.label.SetText("")
		return
	}

	text := rec.Label
	if rec.Deleted {
		c.window.SetTitle("Label Checker (deleted)")
	} else {
		c.window.SetTitle("Label Checker")
	}
	c.label.SetText(text)

	var img image.Image = image.NewRGBA(image.Rect(0, 0, 1, 1))
	if rec.Preview != "" {
		if loaded, err := imaging.Open(rec.Preview); err != nil {
			log.WithField("preview", rec.Preview).Warn(err)
		} else {
			img = imaging.Fit(loaded, maxPreview, maxPreview)
		}
	}
	c.preview.Image = img
	c.preview.Refresh()
}

func (c *checker) prev() {
	if c.session.Prev() {
		c.show()
	}
}

func (c *checker) next() {
	if c.session.Next() {
		c.show()
	}
}

func (c *checker) save() {
	if err := c.session.Save(c.label.Text); err != nil {
		return
	}
	c.show()
}

func (c *checker) delete() {
	if err := c.session.Delete(); err != nil {
		return
	}
	c.show()
}

func (c *checker) importFile() {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, c.window)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()

		if err := c.session.Load(path); err != nil {
			dialog.ShowError(err, c.window)
			return
		}
		c.show()
	}, c.window)
}

func (c *checker) exportFile() {
	if c.session.State() == review.Empty {
		dialog.ShowInformation("Export", "Nothing to export, import a file first.", c.window)
		return
	}

	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, c.window)
			return
		}
		if w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()

		n, err := c.session.Export(path)
		if err != nil {
			dialog.ShowError(err, c.window)
			return
		}
		dialog.ShowInformation("Export", fmt.Sprintf("Saved %d records to %s", n, path), c.window)
	}, c.window)
	save.SetFileName("reviewed.txt")
	save.SetFilter(storage.NewExtensionFileFilter([]string{".txt", ".tsv"}))
	save.Show()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.SetupLogging(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := app.New()
	w := a.NewWindow("Label Checker")

	s := review.NewSession(&review.HTTPFetcher{Timeout: cfg.FetchTimeout}, cfg.Workers)
	c := newChecker(w, s)
	w.SetMainMenu(c.menu())
	w.SetContent(c.content())
	c.bindShortcuts()

	if len(os.Args) > 1 {
		if err := s.Load(os.Args[1]); err != nil {
			log.WithField("file", os.Args[1]).Error(err)
		} else {
			c.show()
		}
	}

	w.Resize(fyne.NewSize(1200, 1200))
	w.ShowAndRun()
}
