// Package pdfedit edits the page list of PDF files: rotate, delete and
// append pages, then write the result.
//
// Edits are recorded against the page list as it was when the file was
// opened, so page indices stay stable until Save: deleting page 2 does not
// shift page 3. Save applies everything with pdfcpu on a temporary copy.
package pdfedit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrPageIndex is returned for a page index outside the page list.
	ErrPageIndex = errors.New("page index out of range")

	// ErrPageDeleted is returned when rotating a page that was deleted.
	ErrPageDeleted = errors.New("page deleted")

	// ErrInvalidAngle is returned for rotations that are not multiples of 90.
	ErrInvalidAngle = errors.New("rotation must be a multiple of 90 degrees")

	// ErrNoPages is returned when saving a document whose pages were all deleted.
	ErrNoPages = errors.New("no pages left to save")
)

// Page is one entry of the editable page list.
type Page struct {
	// Source is the file the page comes from.
	Source string `json:"source"`
	// Number is the 1-based page number inside Source.
	Number int `json:"number"`
	// Rotation is the clockwise rotation applied on save, in [0, 360).
	Rotation int  `json:"rotation"`
	Deleted  bool `json:"deleted"`
}

// Meta is the document information of the opened file plus the current
// number of live pages.
type Meta struct {
	Author   string `json:"author"`
	Creator  string `json:"creator"`
	Producer string `json:"producer"`
	Subject  string `json:"subject"`
	Title    string `json:"title"`
	NPages   int    `json:"npages"`
}

// Operator edits one PDF document.
type Operator struct {
	path    string
	sources []string
	pages   []Page
	meta    Meta
	conf    *model.Configuration
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// Open loads the page list and document information of path.
func Open(path string) (*Operator, error) {
	o := &Operator{path: path, conf: newConfiguration()}
	if err := o.load(path); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Operator) load(path string) error {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return fmt.Errorf("failed to read PDF %s: %w", path, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return fmt.Errorf("failed to validate PDF %s: %w", path, err)
	}

	n, err := api.PageCountFile(path)
	if err != nil {
		return fmt.Errorf("failed to count pages of %s: %w", path, err)
	}

	o.sources = []string{path}
	o.pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		o.pages = append(o.pages, Page{Source: path, Number: i})
	}
	o.meta = Meta{
		Author:   ctx.Author,
		Creator:  ctx.Creator,
		Producer: ctx.Producer,
		Subject:  ctx.Subject,
		Title:    ctx.Title,
		NPages:   n,
	}
	return nil
}

// Path returns the file the operator was opened from.
func (o *Operator) Path() string { return o.path }

// Pages returns a copy of the page list, deleted pages included.
func (o *Operator) Pages() []Page {
	out := make([]Page, len(o.pages))
	copy(out, o.pages)
	return out
}

// Meta returns the document information.
func (o *Operator) Meta() Meta { return o.meta }

func (o *Operator) page(idx int) (*Page, error) {
	if idx < 0 || idx >= len(o.pages) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrPageIndex, idx, len(o.pages))
	}
	return &o.pages[idx], nil
}

// Rotate turns the page at idx (0-based) clockwise by angle degrees.
// Negative angles rotate counter-clockwise. Rotations accumulate.
func (o *Operator) Rotate(idx, angle int) error {
	if angle%90 != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAngle, angle)
	}
	p, err := o.page(idx)
	if err != nil {
		return err
	}
	if p.Deleted {
		return fmt.Errorf("%w: %d", ErrPageDeleted, idx)
	}
	p.Rotation = ((p.Rotation+angle)%360 + 360) % 360
	return nil
}

// Delete marks the page at idx (0-based) as removed. Deleting a page twice
// is a no-op.
func (o *Operator) Delete(idx int) error {
	p, err := o.page(idx)
	if err != nil {
		return err
	}
	if p.Deleted {
		return nil
	}
	p.Deleted = true
	o.meta.NPages--
	return nil
}

// Append adds every page of the PDF at path to the end of the page list.
func (o *Operator) Append(path string) error {
	n, err := api.PageCountFile(path)
	if err != nil {
		return fmt.Errorf("failed to count pages of %s: %w", path, err)
	}
	o.sources = append(o.sources, path)
	for i := 1; i <= n; i++ {
		o.pages = append(o.pages, Page{Source: path, Number: i})
	}
	o.meta.NPages += n
	return nil
}

// Save writes the live pages, rotated, to path. An empty path overwrites
// the file the operator was opened from, after which the operator reflects
// the saved file.
func (o *Operator) Save(path string) error {
	if path == "" {
		path = o.path
	}
	if o.meta.NPages <= 0 {
		return ErrNoPages
	}

	tmp, err := os.MkdirTemp("", "pdfedit-*")
	if err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	step := 0
	next := func() string {
		step++
		return filepath.Join(tmp, "step"+strconv.Itoa(step)+".pdf")
	}

	cur := next()
	if len(o.sources) == 1 {
		if err := copyFile(o.sources[0], cur); err != nil {
			return err
		}
	} else if err := api.MergeCreateFile(o.sources, cur, false, o.conf); err != nil {
		return fmt.Errorf("failed to merge %d files: %w", len(o.sources), err)
	}

	byAngle := make(map[int][]string)
	var deleted []string
	for i, p := range o.pages {
		sel := strconv.Itoa(i + 1)
		if p.Deleted {
			deleted = append(deleted, sel)
			continue
		}
		if p.Rotation != 0 {
			byAngle[p.Rotation] = append(byAngle[p.Rotation], sel)
		}
	}

	angles := make([]int, 0, len(byAngle))
	for a := range byAngle {
		angles = append(angles, a)
	}
	sort.Ints(angles)
	for _, a := range angles {
		out := next()
		if err := api.RotateFile(cur, out, a, byAngle[a], o.conf); err != nil {
			return fmt.Errorf("failed to rotate pages %v: %w", byAngle[a], err)
		}
		cur = out
	}

	if len(deleted) > 0 {
		out := next()
		if err := api.RemovePagesFile(cur, out, deleted, o.conf); err != nil {
			return fmt.Errorf("failed to remove pages %v: %w", deleted, err)
		}
		cur = out
	}

	if err := copyFile(cur, path); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"path":    path,
		"pages":   o.meta.NPages,
		"rotated": len(angles) > 0,
		"deleted": len(deleted),
	}).Info("Saved PDF")

	if path == o.path {
		return o.load(path)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
