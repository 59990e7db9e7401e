package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrEmptyData is returned when a heatmap has no cells.
var ErrEmptyData = errors.New("heatmap data is empty")

// Colormap is a list of stops blended evenly from low (first) to high (last).
type Colormap []colorful.Color

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Built-in colormaps.
var (
	YlGn = Colormap{mustHex("#ffffe5"), mustHex("#d9f0a3"), mustHex("#78c679"), mustHex("#238443"), mustHex("#004529")}
	Gray = Colormap{mustHex("#000000"), mustHex("#ffffff")}
	Heat = Colormap{mustHex("#000004"), mustHex("#781c6d"), mustHex("#ed6925"), mustHex("#fcffa4")}
)

// Colormaps maps the names accepted on the command line.
var Colormaps = map[string]Colormap{
	"ylgn": YlGn,
	"gray": Gray,
	"heat": Heat,
}

// At returns the color at t in [0, 1], blending neighbouring stops in Lab.
func (m Colormap) At(t float64) color.RGBA {
	if len(m) == 0 {
		return color.RGBA{A: 255}
	}
	t = math.Min(math.Max(t, 0), 1)
	if len(m) == 1 || t == 1 {
		return toRGBA(m[len(m)-1])
	}
	pos := t * float64(len(m)-1)
	i := int(pos)
	return toRGBA(m[i].BlendLab(m[i+1], pos-float64(i)))
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// HeatmapOptions controls the layout of a rendered heatmap.
type HeatmapOptions struct {
	// Cell is the side of one data cell in pixels.
	Cell int
	// BarWidth is the width of the colorbar strip. Zero hides it.
	BarWidth int
	// Gap separates the cells from the colorbar.
	Gap int
}

// DefaultHeatmapOptions are used for zero-valued fields.
var DefaultHeatmapOptions = HeatmapOptions{Cell: 8, BarWidth: 16, Gap: 4}

// Heatmap renders a 2D array with nearest-neighbour cells and a vertical
// colorbar on the right (high values at the top). Values are normalised to
// the data range. Rows may not be ragged.
func Heatmap(data [][]float64, cmap Colormap, opts HeatmapOptions) (*image.RGBA, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, ErrEmptyData
	}
	if opts.Cell <= 0 {
		opts.Cell = DefaultHeatmapOptions.Cell
	}
	if opts.Gap < 0 {
		opts.Gap = 0
	}

	cols := len(data[0])
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, row := range data {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), cols)
		}
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	norm := func(v float64) float64 {
		if hi == lo {
			return 0
		}
		return (v - lo) / (hi - lo)
	}

	w := cols * opts.Cell
	h := len(data) * opts.Cell
	total := w
	if opts.BarWidth > 0 {
		total += opts.Gap + opts.BarWidth
	}

	img := image.NewRGBA(image.Rect(0, 0, total, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	for r, row := range data {
		for c, v := range row {
			cell := image.Rect(c*opts.Cell, r*opts.Cell, (c+1)*opts.Cell, (r+1)*opts.Cell)
			draw.Draw(img, cell, image.NewUniform(cmap.At(norm(v))), image.Point{}, draw.Src)
		}
	}

	if opts.BarWidth > 0 {
		x0 := w + opts.Gap
		for y := 0; y < h; y++ {
			t := 1.0
			if h > 1 {
				t = 1 - float64(y)/float64(h-1)
			}
			line := image.Rect(x0, y, x0+opts.BarWidth, y+1)
			draw.Draw(img, line, image.NewUniform(cmap.At(t)), image.Point{}, draw.Src)
		}
	}
	return img, nil
}
