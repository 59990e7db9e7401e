package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CaptionOrigin is the baseline origin of captions drawn by Annotate.
var CaptionOrigin = image.Pt(10, 30)

// CaptionColor is the caption text color.
var CaptionColor = color.RGBA{R: 255, A: 255}

// Annotate returns a copy of img with caption drawn at CaptionOrigin.
// Text running past the right edge is clipped.
func Annotate(img image.Image, caption string) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(CaptionColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(CaptionOrigin.X, CaptionOrigin.Y),
	}
	d.DrawString(caption)
	return out
}

// Fit scales img down to fit inside w x h, keeping the aspect ratio. Images
// already inside the box are returned unscaled. Non-positive bounds return
// img unchanged.
func Fit(img image.Image, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}
	return imaging.Fit(img, w, h, imaging.Lanczos)
}
