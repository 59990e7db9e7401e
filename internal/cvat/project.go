package cvat

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrLabelMismatch is returned when polygons of one group carry different labels.
	ErrLabelMismatch = errors.New("label mismatch")

	// ErrOutOfRange is returned when a frame id falls outside every job segment.
	ErrOutOfRange = errors.New("frame out of range")

	// ErrAmbiguousFrame is returned when a frame id falls inside several job segments.
	ErrAmbiguousFrame = errors.New("frame in multiple jobs")

	// ErrUnknownImage is returned for a basename that is not part of the export.
	ErrUnknownImage = errors.New("unknown image")
)

// Options tunes how an export is loaded.
type Options struct {
	// BaseURL is the root of the CVAT UI, e.g. "https://cvat.example.com".
	// When empty it is derived from the first segment URL.
	BaseURL string
}

// Segment is one job of the task: an inclusive range of frames.
type Segment struct {
	ID    int    `json:"id"`
	JobID int    `json:"job_id"`
	Start int    `json:"start"`
	Stop  int    `json:"stop"`
	URL   string `json:"url"`
}

// Contains reports whether frameID lies in [Start, Stop].
func (s Segment) Contains(frameID int) bool {
	return s.Start <= frameID && frameID <= s.Stop
}

// Project is one loaded export file.
type Project struct {
	name     string
	taskID   int
	taskName string
	baseURL  string

	jobs   map[int]Segment
	images map[string]*Image
	order  []*Image
}

// Open reads and parses the export at path. The project name is the file
// name without its extension.
func Open(path string, opts Options) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(f, name, opts)
}

// Parse decodes an export from r.
func Parse(r io.Reader, name string, opts Options) (*Project, error) {
	var doc xmlAnnotations
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}

	p := &Project{
		name:     name,
		taskID:   doc.Meta.Task.ID,
		taskName: doc.Meta.Task.Name,
		jobs:     make(map[int]Segment, len(doc.Meta.Task.Segments)),
		images:   make(map[string]*Image, len(doc.Images)),
		order:    make([]*Image, 0, len(doc.Images)),
	}

	for _, raw := range doc.Meta.Task.Segments {
		seg := Segment{
			ID:    raw.ID,
			JobID: jobIDFromURL(raw.URL, raw.ID),
			Start: raw.Start,
			Stop:  raw.Stop,
			URL:   strings.TrimSpace(raw.URL),
		}
		p.jobs[seg.JobID] = seg
	}

	p.baseURL = strings.TrimRight(opts.BaseURL, "/")
	if p.baseURL == "" && len(doc.Meta.Task.Segments) > 0 {
		p.baseURL = baseURLFrom(doc.Meta.Task.Segments[0].URL)
	}

	for _, raw := range doc.Images {
		img, err := newImage(raw)
		if err != nil {
			var merr *MergeError
			if errors.As(err, &merr) {
				if link, lerr := p.FrameURL(merr.FrameID); lerr == nil {
					merr.URL = link
				}
			}
			return nil, err
		}

		base := img.Basename()
		if prev, dup := p.images[base]; dup {
			log.WithFields(log.Fields{
				"project":  name,
				"basename": base,
				"frame":    img.FrameID,
				"previous": prev.FrameID,
			}).Warn("Duplicate image basename, keeping the later frame")
		}
		p.images[base] = img
		p.order = append(p.order, img)
	}

	log.WithFields(log.Fields{
		"project": name,
		"task":    p.taskID,
		"jobs":    len(p.jobs),
		"images":  len(p.order),
	}).Debug("Loaded CVAT export")

	return p, nil
}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// TaskID returns the CVAT task id from the export metadata.
func (p *Project) TaskID() int { return p.taskID }

// TaskName returns the CVAT task name from the export metadata.
func (p *Project) TaskName() string { return p.taskName }

// Segments returns the job table ordered by start frame.
func (p *Project) Segments() []Segment {
	segs := make([]Segment, 0, len(p.jobs))
	for _, s := range p.jobs {
		segs = append(segs, s)
	}
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].Start != segs[j].Start {
			return segs[i].Start < segs[j].Start
		}
		return segs[i].JobID < segs[j].JobID
	})
	return segs
}

// Images returns the images in export order.
func (p *Project) Images() []*Image {
	return p.order
}

// Image looks up an image by basename.
func (p *Project) Image(basename string) (*Image, bool) {
	img, ok := p.images[basename]
	return img, ok
}

// FrameToJob returns the job whose segment contains frameID.
func (p *Project) FrameToJob(frameID int) (int, error) {
	found := -1
	for _, seg := range p.Segments() {
		if !seg.Contains(frameID) {
			continue
		}
		if found >= 0 {
			return 0, fmt.Errorf("%w: frame %d in jobs %d and %d", ErrAmbiguousFrame, frameID, found, seg.JobID)
		}
		found = seg.JobID
	}
	if found < 0 {
		return 0, fmt.Errorf("%w: invalid frame id: %d", ErrOutOfRange, frameID)
	}
	return found, nil
}

// URL returns the bare base URL of the CVAT UI.
func (p *Project) URL() string {
	return p.baseURL
}

// JobURL returns the link to a job without a frame parameter.
func (p *Project) JobURL(jobID int) string {
	return fmt.Sprintf("%s/jobs/%d", p.baseURL, jobID)
}

// FrameURL returns the link to a frame inside the job that owns it.
func (p *Project) FrameURL(frameID int) (string, error) {
	jobID, err := p.FrameToJob(frameID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/jobs/%d?frame=%d", p.baseURL, jobID, frameID), nil
}

// ImageURL returns the frame link of the image with the given basename.
func (p *Project) ImageURL(basename string) (string, error) {
	img, ok := p.images[basename]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownImage, basename)
	}
	return p.FrameURL(img.FrameID)
}

// Stats summarises the annotations of a project.
type Stats struct {
	Images      int            `json:"images"`
	Annotated   int            `json:"annotated"`
	Annotations int            `json:"annotations"`
	Crowd       int            `json:"crowd"`
	Labels      map[string]int `json:"labels"`
}

// Stats counts images, annotations and annotations per label.
func (p *Project) Stats() Stats {
	st := Stats{Images: len(p.order), Labels: make(map[string]int)}
	for _, img := range p.order {
		if img.Annotated() {
			st.Annotated++
		}
		for _, ann := range img.Annotations {
			st.Annotations++
			st.Labels[ann.Label]++
			if ann.Crowd {
				st.Crowd++
			}
		}
	}
	return st
}

// jobIDFromURL extracts the job id from a segment URL. Older servers write
// "http://host:8080/?id=12", newer ones ".../jobs/12". Anything else falls
// back to the segment id.
func jobIDFromURL(raw string, fallback int) int {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if i := strings.LastIndex(raw, "="); i >= 0 {
		if id, err := strconv.Atoi(raw[i+1:]); err == nil {
			return id
		}
	}
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		if id, err := strconv.Atoi(raw[i+1:]); err == nil {
			return id
		}
	}
	return fallback
}

// baseURLFrom reduces a segment URL to scheme://host, dropping the API port.
func baseURLFrom(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Hostname()
}
