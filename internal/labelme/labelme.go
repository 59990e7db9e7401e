// Package labelme reads LabelMe per-image JSON annotation files.
package labelme

import (
	"fmt"
	"image"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cvdata-tools/internal/fsutil"
	"github.com/ironsheep/cvdata-tools/internal/geom"
)

// ShapePolygon is the only shape type turned into contours.
const ShapePolygon = "polygon"

// Shape is one entry of the "shapes" list.
type Shape struct {
	Label     string          `json:"label"`
	ShapeType string          `json:"shape_type"`
	Points    [][]float64     `json:"points"`
	GroupID   *int            `json:"group_id"`
	Flags     map[string]bool `json:"flags,omitempty"`
}

// Polygon converts the shape's points. Entries that are not (x, y) pairs
// are skipped.
func (s Shape) Polygon() geom.Polygon {
	poly := make(geom.Polygon, 0, len(s.Points))
	for _, pt := range s.Points {
		if len(pt) < 2 {
			continue
		}
		poly = append(poly, geom.Point{X: pt[0], Y: pt[1]})
	}
	return poly
}

// Annotation is one LabelMe file.
type Annotation struct {
	Path string `json:"-"`

	Version     string  `json:"version,omitempty"`
	ImagePath   string  `json:"imagePath"`
	ImageHeight int     `json:"imageHeight"`
	ImageWidth  int     `json:"imageWidth"`
	Shapes      []Shape `json:"shapes"`

	contours [][]image.Point
}

// Open reads one annotation file. Polygon contours are computed once here.
func Open(path string) (*Annotation, error) {
	var ann Annotation
	if err := fsutil.ReadJSON(path, &ann); err != nil {
		return nil, err
	}
	ann.Path = path
	ann.contours = buildContours(ann.Shapes)
	return &ann, nil
}

// ImageSize returns (height, width).
func (a *Annotation) ImageSize() (int, int) {
	return a.ImageHeight, a.ImageWidth
}

// LabelNames returns the label of every shape, in file order.
func (a *Annotation) LabelNames() []string {
	names := make([]string, 0, len(a.Shapes))
	for _, s := range a.Shapes {
		names = append(names, s.Label)
	}
	return names
}

// Contours returns the integer vertex lists of the polygon shapes.
// Coordinates are truncated toward zero.
func (a *Annotation) Contours() [][]image.Point {
	if a.contours == nil {
		a.contours = buildContours(a.Shapes)
	}
	return a.contours
}

// Polygons returns the polygon shapes in file order, with a parallel slice
// of their labels.
func (a *Annotation) Polygons() ([]geom.Polygon, []string) {
	var polys []geom.Polygon
	var labels []string
	for _, s := range a.Shapes {
		if s.ShapeType != ShapePolygon {
			continue
		}
		polys = append(polys, s.Polygon())
		labels = append(labels, s.Label)
	}
	return polys, labels
}

// Mask rasterizes every polygon shape at the annotated image size.
func (a *Annotation) Mask() (*image.Alpha, error) {
	if a.ImageWidth <= 0 || a.ImageHeight <= 0 {
		return nil, fmt.Errorf("%s: invalid image size %dx%d", a.Path, a.ImageWidth, a.ImageHeight)
	}
	polys, _ := a.Polygons()
	return geom.Mask(a.ImageWidth, a.ImageHeight, polys), nil
}

func buildContours(shapes []Shape) [][]image.Point {
	contours := [][]image.Point{}
	for _, s := range shapes {
		if s.ShapeType != ShapePolygon {
			continue
		}
		contour := make([]image.Point, 0, len(s.Points))
		for _, pt := range s.Points {
			if len(pt) < 2 {
				continue
			}
			contour = append(contour, image.Point{X: int(pt[0]), Y: int(pt[1])})
		}
		contours = append(contours, contour)
	}
	return contours
}

// Scan opens every ".json" file under dir. Files that fail to parse are
// logged and skipped.
func Scan(dir string) ([]*Annotation, error) {
	files, err := fsutil.MakeDataset(dir, ".json", false)
	if err != nil {
		return nil, err
	}

	anns := make([]*Annotation, 0, len(files))
	for _, f := range files {
		ann, err := Open(f)
		if err != nil {
			log.WithFields(log.Fields{
				"path":  f,
				"error": err,
			}).Warn("Skipping unreadable LabelMe file")
			continue
		}
		anns = append(anns, ann)
	}
	return anns, nil
}
