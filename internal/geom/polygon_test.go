package geom

import (
	"math"
	"testing"
)

func square(x, y, size float64) Polygon {
	return Polygon{
		{X: x, Y: y},
		{X: x + size, Y: y},
		{X: x + size, Y: y + size},
		{X: x, Y: y + size},
	}
}

func TestPolygon_Area(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
		want float64
	}{
		{"empty", nil, 0},
		{"segment", Polygon{{0, 0}, {5, 5}}, 0},
		{"unit square", square(0, 0, 1), 1},
		{"10x10 square", square(3, 4, 10), 100},
		{"triangle", Polygon{{0, 0}, {4, 0}, {0, 3}}, 6},
		{"clockwise triangle", Polygon{{0, 0}, {0, 3}, {4, 0}}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.poly.Area(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Area: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolygon_Bounds(t *testing.T) {
	p := Polygon{{5, 2}, {1, 8}, {9, 4}}
	b := p.Bounds()
	want := Bounds{X1: 1, Y1: 2, X2: 9, Y2: 8}
	if b != want {
		t.Errorf("Bounds: got %+v, want %+v", b, want)
	}
	if b.Width() != 8 || b.Height() != 6 {
		t.Errorf("size: got %vx%v, want 8x6", b.Width(), b.Height())
	}
}

func TestBoundsOf(t *testing.T) {
	b := BoundsOf([]Polygon{square(0, 0, 2), nil, square(10, 5, 1)})
	want := Bounds{X1: 0, Y1: 0, X2: 11, Y2: 6}
	if b != want {
		t.Errorf("BoundsOf: got %+v, want %+v", b, want)
	}
}

func TestMask(t *testing.T) {
	mask := Mask(20, 20, []Polygon{square(5, 5, 10), {{0, 0}, {1, 1}}})

	if mask.Bounds().Dx() != 20 || mask.Bounds().Dy() != 20 {
		t.Fatalf("unexpected mask size %v", mask.Bounds())
	}
	if a := mask.AlphaAt(10, 10).A; a != 255 {
		t.Errorf("inside alpha: got %d, want 255", a)
	}
	if a := mask.AlphaAt(1, 1).A; a != 0 {
		t.Errorf("outside alpha: got %d, want 0", a)
	}
	if a := mask.AlphaAt(18, 18).A; a != 0 {
		t.Errorf("outside alpha: got %d, want 0", a)
	}
}

func TestMask_Binary(t *testing.T) {
	// Off-grid vertices and a diagonal edge give partially covered pixels.
	tri := Polygon{{X: 2.3, Y: 1.7}, {X: 17.6, Y: 4.2}, {X: 6.1, Y: 18.4}}
	mask := Mask(20, 20, []Polygon{tri})

	var inside int
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			switch a := mask.AlphaAt(x, y).A; a {
			case 0:
			case 255:
				inside++
			default:
				t.Fatalf("pixel (%d,%d): alpha %d, want 0 or 255", x, y, a)
			}
		}
	}

	// Thresholding at half coverage keeps the pixel count close to the area.
	if diff := math.Abs(float64(inside) - tri.Area()); diff > tri.Area()*0.25 {
		t.Errorf("mask has %d pixels, polygon area %.1f", inside, tri.Area())
	}
}
