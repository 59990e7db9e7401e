// Package geom holds the small amount of polygon geometry shared by the
// annotation readers: bounding boxes, areas and rasterized masks.
package geom

import (
	"image"
	"image/color"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds represents an axis-aligned bounding box.
//
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right corner,
// both inclusive since polygon vertices lie on them.
type Bounds struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns X2 - X1.
func (b Bounds) Width() float64 { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Bounds) Height() float64 { return b.Y2 - b.Y1 }

// Union returns the smallest box covering both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		X1: math.Min(b.X1, o.X1),
		Y1: math.Min(b.Y1, o.Y1),
		X2: math.Max(b.X2, o.X2),
		Y2: math.Max(b.Y2, o.Y2),
	}
}

// Polygon is an ordered ring of vertices. The ring is implicitly closed.
type Polygon []Point

// Bounds returns the bounding box of the polygon. An empty polygon yields
// the zero Bounds.
func (p Polygon) Bounds() Bounds {
	if len(p) == 0 {
		return Bounds{}
	}
	b := Bounds{X1: p[0].X, Y1: p[0].Y, X2: p[0].X, Y2: p[0].Y}
	for _, pt := range p[1:] {
		b.X1 = math.Min(b.X1, pt.X)
		b.Y1 = math.Min(b.Y1, pt.Y)
		b.X2 = math.Max(b.X2, pt.X)
		b.Y2 = math.Max(b.Y2, pt.Y)
	}
	return b
}

// Area returns the unsigned area of the polygon using the shoelace formula.
// Self-intersecting rings give the net signed area's magnitude.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return math.Abs(sum) / 2
}

// BoundsOf returns the bounding box covering every polygon.
func BoundsOf(polys []Polygon) Bounds {
	var b Bounds
	first := true
	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		if first {
			b = p.Bounds()
			first = false
			continue
		}
		b = b.Union(p.Bounds())
	}
	return b
}

// maskThreshold is the coverage, in alpha units, at which a pixel joins the mask.
const maskThreshold = 128

// Mask rasterizes polygons into a width x height binary alpha mask. A pixel
// is 255 when at least half of it is covered and 0 otherwise, so the
// anti-aliased edge from draw2d never leaks into partial coverage.
// Polygons with fewer than three vertices are skipped.
func Mask(width, height int, polys []Polygon) *image.Alpha {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	gc := draw2dimg.NewGraphicContext(canvas)
	gc.SetFillColor(color.White)

	for _, p := range polys {
		if len(p) < 3 {
			continue
		}
		gc.BeginPath()
		gc.MoveTo(p[0].X, p[0].Y)
		for _, pt := range p[1:] {
			gc.LineTo(pt.X, pt.Y)
		}
		gc.Close()
		gc.Fill()
	}

	mask := image.NewAlpha(canvas.Bounds())
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if canvas.RGBAAt(x, y).A >= maskThreshold {
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
	return mask
}
