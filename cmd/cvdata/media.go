package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cvdata-tools/internal/config"
	"github.com/ironsheep/cvdata-tools/internal/fsutil"
	"github.com/ironsheep/cvdata-tools/internal/imaging"
	"github.com/ironsheep/cvdata-tools/internal/labelme"
	"github.com/ironsheep/cvdata-tools/internal/parallel"
	"github.com/ironsheep/cvdata-tools/internal/pdfedit"
	"github.com/ironsheep/cvdata-tools/internal/review"
)

func runPDF(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("pdf", flag.ExitOnError)
	var rotate, del, appendFiles stringList
	fs.Var(&rotate, "rotate", "rotate a page, \"<index>:<degrees>\" with 0-based index (repeatable)")
	fs.Var(&del, "delete", "delete the page at a 0-based index (repeatable)")
	fs.Var(&appendFiles, "append", "append every page of another PDF (repeatable)")
	out := fs.String("o", "", "output file (default: overwrite the input)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: cvdata pdf [options] file.pdf")
	}
	op, err := pdfedit.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	if len(rotate)+len(del)+len(appendFiles) == 0 {
		return printJSON(map[string]interface{}{
			"meta":  op.Meta(),
			"pages": op.Pages(),
		})
	}

	for _, f := range appendFiles {
		if err := op.Append(f); err != nil {
			return err
		}
	}
	for _, r := range rotate {
		idx, angle, ok := strings.Cut(r, ":")
		i, err1 := strconv.Atoi(idx)
		a, err2 := strconv.Atoi(angle)
		if !ok || err1 != nil || err2 != nil {
			return fmt.Errorf("invalid -rotate %q, want <index>:<degrees>", r)
		}
		if err := op.Rotate(i, a); err != nil {
			return err
		}
	}
	for _, d := range del {
		i, err := strconv.Atoi(d)
		if err != nil {
			return fmt.Errorf("invalid -delete %q: %w", d, err)
		}
		if err := op.Delete(i); err != nil {
			return err
		}
	}
	return op.Save(*out)
}

func runRecolor(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("recolor", flag.ExitOnError)
	hue := fs.Float64("hue", 0, "target hue on the 0-180 scale")
	hueRange := fs.Float64("range", imaging.DefaultHueRange, "allowed spread around the hue")
	labelmeDir := fs.String("labelme-dir", "", "only tint inside the polygons of <dir>/<stem>.json when present")
	outDir := fs.String("o", "", "output directory (required)")
	workers := fs.Int("workers", cfg.Workers, "images processed concurrently")
	fs.Parse(args)

	if fs.NArg() == 0 || *outDir == "" {
		return errors.New("usage: cvdata recolor -hue H -o outdir [options] image...")
	}

	tint := imaging.White2Colour{HueMean: *hue, HueRange: *hueRange}

	recolorOne := func(path string) (string, error) {
		img, err := imaging.Open(path)
		if err != nil {
			return "", err
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		var mask *image.Alpha
		if *labelmeDir != "" {
			ann, err := labelme.Open(filepath.Join(*labelmeDir, stem+".json"))
			switch {
			case errors.Is(err, os.ErrNotExist):
				log.WithField("image", path).Debug("No annotation, tinting whole image")
			case err != nil:
				return "", err
			default:
				if mask, err = ann.Mask(); err != nil {
					return "", err
				}
			}
		}

		out, err := tint.Apply(img, mask)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		dst := filepath.Join(*outDir, filepath.Base(path))
		return dst, imaging.Save(out, dst)
	}

	written, err := parallel.Run(recolorOne, fs.Args(), *workers)
	if err != nil {
		return err
	}
	for _, w := range written {
		fmt.Println(w)
	}
	return nil
}

func runPalette(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("palette", flag.ExitOnError)
	mode := fs.String("mode", "bgr", "triplet channel order, rgb or bgr")
	black := fs.Bool("black", false, "prepend black to the bar")
	out := fs.String("o", "", "render the bar as an image instead of printing triplets")
	swatch := fs.Int("swatch", 4, "swatch width in pixels when rendering")
	height := fs.Int("height", 32, "strip height in pixels when rendering")
	named := fs.Bool("named", false, "print the named color table")
	fs.Parse(args)

	m, err := imaging.ParseMode(*mode)
	if err != nil {
		return err
	}
	bar, err := imaging.NewColorBar(m, *black)
	if err != nil {
		return err
	}

	if *named {
		table := make(map[string][3]uint8)
		for _, n := range imaging.NamedColors() {
			table[n], _ = bar.Color(n)
		}
		return printJSON(table)
	}
	if *out != "" {
		return imaging.Save(imaging.PaletteImage(bar.Palette(), *swatch, *height), *out)
	}
	return printJSON(bar.Bar())
}

func runHeatmap(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("heatmap", flag.ExitOnError)
	cmapName := fs.String("cmap", "ylgn", "colormap: ylgn, gray or heat")
	cell := fs.Int("cell", imaging.DefaultHeatmapOptions.Cell, "cell size in pixels")
	bar := fs.Int("bar", imaging.DefaultHeatmapOptions.BarWidth, "colorbar width in pixels, 0 hides it")
	out := fs.String("o", "heatmap.png", "output image")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: cvdata heatmap [options] data.json|data.yaml")
	}
	cmap, ok := imaging.Colormaps[strings.ToLower(*cmapName)]
	if !ok {
		return fmt.Errorf("unknown colormap %q", *cmapName)
	}

	var data [][]float64
	switch ext := strings.ToLower(filepath.Ext(fs.Arg(0))); ext {
	case ".json":
		if err := fsutil.ReadJSON(fs.Arg(0), &data); err != nil {
			return err
		}
	case ".yaml", ".yml":
		if err := fsutil.ReadYAML(fs.Arg(0), &data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", fsutil.ErrUnsupportedType, ext)
	}

	img, err := imaging.Heatmap(data, cmap, imaging.HeatmapOptions{
		Cell:     *cell,
		BarWidth: *bar,
		Gap:      imaging.DefaultHeatmapOptions.Gap,
	})
	if err != nil {
		return err
	}
	return imaging.Save(img, *out)
}

func runReview(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	out := fs.String("o", "", "export the records to this file")
	workers := fs.Int("workers", cfg.Workers, "concurrent preview downloads")
	timeout := fs.Duration("timeout", cfg.FetchTimeout, "preview download timeout")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: cvdata review [options] records.tsv")
	}

	s := review.NewSession(&review.HTTPFetcher{Timeout: *timeout}, *workers)
	if err := s.Load(fs.Arg(0)); err != nil {
		return err
	}

	missing := 0
	for _, r := range s.Records() {
		if r.Preview == "" {
			missing++
		}
	}
	log.WithFields(log.Fields{
		"previews": s.PreviewDir(),
		"missing":  missing,
	}).Info("Previews rendered")

	if *out == "" {
		return nil
	}
	_, err := s.Export(*out)
	return err
}
