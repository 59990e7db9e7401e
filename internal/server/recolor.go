package server

import (
	"image"

	"github.com/ironsheep/cvdata-tools/internal/imaging"
	"github.com/ironsheep/cvdata-tools/internal/labelme"
)

// recolor tints img towards hue. With a LabelMe file only its polygons are
// touched.
func recolor(img image.Image, hue, hueRange float64, labelmePath string) (*image.RGBA, error) {
	var mask *image.Alpha
	if labelmePath != "" {
		ann, err := labelme.Open(labelmePath)
		if err != nil {
			return nil, err
		}
		if mask, err = ann.Mask(); err != nil {
			return nil, err
		}
	}
	return imaging.White2Colour{HueMean: hue, HueRange: hueRange}.Apply(img, mask)
}
