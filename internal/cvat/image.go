package cvat

import (
	"fmt"
	"path"
)

// Image is one annotated frame of an export.
type Image struct {
	FrameID     int           `json:"frame_id"`
	Name        string        `json:"name"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Annotations []*Annotation `json:"annotations"`
}

// Basename returns the last element of the image's file name. CVAT always
// writes forward slashes, regardless of the host the task was created on.
func (img *Image) Basename() string {
	return path.Base(img.Name)
}

// Annotated reports whether the image carries at least one annotation.
func (img *Image) Annotated() bool {
	return len(img.Annotations) > 0
}

// MergeError reports a group whose polygons carry different labels.
type MergeError struct {
	FrameID int
	Name    string
	// URL links to the frame in the CVAT UI; empty when it cannot be resolved.
	URL string
	Err error
}

func (e *MergeError) Error() string {
	msg := fmt.Sprintf("frame %d (%s): %v", e.FrameID, path.Base(e.Name), e.Err)
	if e.URL != "" {
		msg += " [" + e.URL + "]"
	}
	return msg
}

func (e *MergeError) Unwrap() error { return e.Err }

// newImage converts a raw <image> element and applies the group merge rule.
func newImage(raw xmlImage) (*Image, error) {
	img := &Image{
		FrameID: raw.ID,
		Name:    raw.Name,
		Width:   raw.Width,
		Height:  raw.Height,
	}

	anns, err := mergeGroups(raw.Polygons)
	if err != nil {
		return nil, &MergeError{FrameID: raw.ID, Name: raw.Name, Err: err}
	}
	img.Annotations = anns
	return img, nil
}

// mergeGroups walks polygons in order. Polygons sharing a group id collapse
// into the annotation created by the first of them; order of first
// appearance is preserved.
func mergeGroups(polygons []xmlPolygon) ([]*Annotation, error) {
	anns := make([]*Annotation, 0, len(polygons))
	groups := make(map[string]int) // group id -> index in anns

	for _, p := range polygons {
		ann, err := newAnnotation(p)
		if err != nil {
			return nil, err
		}
		if !ann.HasGroup() {
			anns = append(anns, ann)
			continue
		}
		idx, seen := groups[ann.GroupID]
		if !seen {
			groups[ann.GroupID] = len(anns)
			anns = append(anns, ann)
			continue
		}
		if err := anns[idx].Merge(ann); err != nil {
			return nil, err
		}
	}
	return anns, nil
}
