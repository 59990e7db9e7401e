package cvat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ironsheep/cvdata-tools/internal/geom"
)

// NoGroup is the group id of a polygon that does not belong to any group.
const NoGroup = ""

// crowdAttributes are the polygon attribute names read as the crowd flag.
var crowdAttributes = []string{"iscrowd", "crowd"}

// Annotation is one polygon region of an image.
//
// Rings holds one point ring per raw polygon record merged into the
// annotation, in the order the records appeared in the export.
type Annotation struct {
	Label      string            `json:"label"`
	GroupID    string            `json:"group_id,omitempty"`
	Crowd      bool              `json:"iscrowd"`
	Occluded   bool              `json:"occluded"`
	ZOrder     int               `json:"z_order"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Rings      []geom.Polygon    `json:"rings"`
}

// HasGroup reports whether the annotation was declared with a group id.
func (a *Annotation) HasGroup() bool {
	return a.GroupID != NoGroup
}

// Bounds returns the bounding box covering every ring.
func (a *Annotation) Bounds() geom.Bounds {
	return geom.BoundsOf(a.Rings)
}

// Area returns the summed area of all rings.
func (a *Annotation) Area() float64 {
	var total float64
	for _, r := range a.Rings {
		total += r.Area()
	}
	return total
}

// Merge folds b into a. Labels must be identical; on mismatch a is left
// untouched and an error wrapping ErrLabelMismatch is returned.
func (a *Annotation) Merge(b *Annotation) error {
	if a.Label != b.Label {
		return fmt.Errorf("%w: expected annotations with same label for merge, got %q and %q",
			ErrLabelMismatch, a.Label, b.Label)
	}
	a.Rings = append(a.Rings, b.Rings...)
	a.Crowd = a.Crowd || b.Crowd
	return nil
}

// newAnnotation converts a raw polygon record.
func newAnnotation(p xmlPolygon) (*Annotation, error) {
	ring, err := parsePoints(p.Points)
	if err != nil {
		return nil, err
	}

	ann := &Annotation{
		Label:    p.Label,
		GroupID:  NoGroup,
		Occluded: p.Occluded == "1",
		ZOrder:   p.ZOrder,
		Rings:    []geom.Polygon{ring},
	}
	if p.GroupID != nil {
		ann.GroupID = *p.GroupID
	}
	if len(p.Attributes) > 0 {
		ann.Attributes = make(map[string]string, len(p.Attributes))
		for _, attr := range p.Attributes {
			ann.Attributes[attr.Name] = strings.TrimSpace(attr.Value)
		}
	}
	ann.Crowd = crowdFlag(ann.Attributes)
	return ann, nil
}

func crowdFlag(attrs map[string]string) bool {
	for name, value := range attrs {
		for _, want := range crowdAttributes {
			if !strings.EqualFold(name, want) {
				continue
			}
			switch strings.ToLower(value) {
			case "true", "1", "yes":
				return true
			}
		}
	}
	return false
}

// parsePoints parses "x1,y1;x2,y2;..." into a ring.
func parsePoints(s string) (geom.Polygon, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return geom.Polygon{}, nil
	}

	pairs := strings.Split(s, ";")
	ring := make(geom.Polygon, 0, len(pairs))
	for _, pair := range pairs {
		xy := strings.Split(pair, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("invalid point %q: expected x,y", pair)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", pair, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", pair, err)
		}
		ring = append(ring, geom.Point{X: x, Y: y})
	}
	return ring, nil
}
