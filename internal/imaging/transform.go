package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
)

// ErrMaskSize is returned when a mask does not cover the image it is applied to.
var ErrMaskSize = errors.New("mask size does not match image")

// DefaultHueRange is the hue radius used when White2Colour.HueRange is zero.
const DefaultHueRange = 5

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// SigmoidRemap squashes x into (mean-radius, mean+radius), centred on mean.
func SigmoidRemap(x, mean, radius float64) float64 {
	return 2*(Sigmoid(x-mean)-0.5)*radius + mean
}

// White2Colour tints pale regions towards a hue. Hue is pulled into
// HueMean±HueRange and saturation is forced into [180, 230], both on the
// 8-bit HSV scale. Value is left untouched.
type White2Colour struct {
	HueMean  float64
	HueRange float64
}

// Remap applies the transform to a single color.
func (w White2Colour) Remap(c color.RGBA) color.RGBA {
	hr := w.HueRange
	if hr == 0 {
		hr = DefaultHueRange
	}

	h, s, v := RGBAToHSV(c)
	nh := SigmoidRemap(float64(h), w.HueMean, hr)
	if nh < 0 {
		nh = 0
	}
	ns := math.Min(math.Max(6*float64(s), 180), 230)

	out := HSVToRGBA(uint8(math.Mod(nh, 180)), uint8(ns), v)
	out.A = c.A
	return out
}

// Apply returns a recolored copy of img. With a nil mask every pixel is
// remapped; otherwise only pixels whose mask alpha is non-zero are.
func (w White2Colour) Apply(img image.Image, mask *image.Alpha) (*image.RGBA, error) {
	b := img.Bounds()
	if mask != nil && (mask.Bounds().Dx() != b.Dx() || mask.Bounds().Dy() != b.Dy()) {
		return nil, fmt.Errorf("%w: mask %v, image %v", ErrMaskSize, mask.Bounds().Size(), b.Size())
	}

	remapped := adjust.Apply(img, w.Remap)
	if mask == nil {
		return remapped, nil
	}

	rb, mb := remapped.Bounds(), mask.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if mask.AlphaAt(mb.Min.X+x, mb.Min.Y+y).A > 0 {
				out.SetRGBA(x, y, remapped.RGBAAt(rb.Min.X+x, rb.Min.Y+y))
				continue
			}
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out, nil
}
