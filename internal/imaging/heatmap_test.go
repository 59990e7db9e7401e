package imaging

import (
	"errors"
	"image/color"
	"testing"
)

func TestColormap_At(t *testing.T) {
	if got := Gray.At(0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("At(0): got %v", got)
	}
	if got := Gray.At(1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("At(1): got %v", got)
	}
	if got := Gray.At(2); got != Gray.At(1) {
		t.Errorf("At should clamp, got %v", got)
	}
	mid := Gray.At(0.5)
	if mid.R == 0 || mid.R == 255 {
		t.Errorf("At(0.5) should be between stops, got %v", mid)
	}
}

func TestHeatmap(t *testing.T) {
	data := [][]float64{
		{0, 1, 2},
		{3, 4, 5},
	}
	img, err := Heatmap(data, Gray, HeatmapOptions{Cell: 2, BarWidth: 3, Gap: 1})
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}

	if img.Bounds().Dx() != 3*2+1+3 || img.Bounds().Dy() != 4 {
		t.Fatalf("size: got %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("min cell: got %v, want black", got)
	}
	if got := img.RGBAAt(5, 3); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("max cell: got %v, want white", got)
	}
	// colorbar: top is high, bottom is low
	if got := img.RGBAAt(7, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("bar top: got %v", got)
	}
	if got := img.RGBAAt(7, 3); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("bar bottom: got %v", got)
	}
}

func TestHeatmap_Errors(t *testing.T) {
	if _, err := Heatmap(nil, Gray, HeatmapOptions{}); !errors.Is(err, ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
	if _, err := Heatmap([][]float64{{1, 2}, {3}}, Gray, HeatmapOptions{}); err == nil {
		t.Error("expected error for ragged rows")
	}
}

func TestHeatmap_Constant(t *testing.T) {
	img, err := Heatmap([][]float64{{7, 7}}, YlGn, HeatmapOptions{})
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	if img.Bounds().Dx() != 2*8+4+16 {
		t.Errorf("default layout: got width %d", img.Bounds().Dx())
	}
	if img.RGBAAt(0, 0) != YlGn.At(0) {
		t.Errorf("constant data should map to the low stop")
	}
}
