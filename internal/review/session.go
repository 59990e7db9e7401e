package review

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cvdata-tools/internal/fsutil"
	"github.com/ironsheep/cvdata-tools/internal/imaging"
	"github.com/ironsheep/cvdata-tools/internal/parallel"
)

var (
	// ErrMalformedLine is returned by Load for a line that does not hold
	// exactly three tab-separated fields.
	ErrMalformedLine = errors.New("malformed line")

	// ErrEmpty is returned by operations that need a loaded record.
	ErrEmpty = errors.New("no records loaded")
)

// PreviewDirName is the directory, next to the loaded file, that holds the
// rendered previews.
const PreviewDirName = "images"

// Record is one line of a review file.
type Record struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Label   string `json:"label"`
	// Preview is the path of the captioned image, empty when the fetch or
	// render failed.
	Preview string `json:"preview,omitempty"`
	Deleted bool   `json:"deleted"`
}

// Line formats the record as a review file line, without terminator.
func (r Record) Line() string {
	return r.URL + "\t" + r.Caption + "\t" + r.Label
}

// State is the session state.
type State int

const (
	Empty State = iota
	Loaded
)

func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "empty"
}

// Session holds the records of one review file and the current position.
type Session struct {
	// Fetcher downloads previews. Nil disables previews.
	Fetcher Fetcher
	// Workers bounds concurrent preview downloads. Values below 2 fetch
	// one record at a time.
	Workers int

	records    []Record
	current    int
	path       string
	previewDir string
}

// NewSession returns an empty session.
func NewSession(f Fetcher, workers int) *Session {
	return &Session{Fetcher: f, Workers: workers}
}

// State reports Loaded when at least one record is in memory.
func (s *Session) State() State {
	if len(s.records) == 0 {
		return Empty
	}
	return Loaded
}

// Path returns the loaded file.
func (s *Session) Path() string { return s.path }

// PreviewDir returns the directory previews are written to.
func (s *Session) PreviewDir() string { return s.previewDir }

// ParseLines parses review file lines. Each line is trimmed and must hold
// exactly three tab-separated fields.
func ParseLines(lines []string) ([]Record, error) {
	records := make([]Record, 0, len(lines))
	for i, line := range lines {
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 3", ErrMalformedLine, i+1, len(parts))
		}
		records = append(records, Record{URL: parts[0], Caption: parts[1], Label: parts[2]})
	}
	return records, nil
}

// Load reads a review file and renders the previews. On any parse error the
// session is left untouched. Preview failures are logged and leave the
// record without a preview.
func (s *Session) Load(file string) error {
	lines, err := fsutil.ReadLines(file)
	if err != nil {
		return err
	}
	records, err := ParseLines(lines)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	previewDir := filepath.Join(filepath.Dir(file), PreviewDirName)
	if s.Fetcher != nil {
		s.renderPreviews(records, previewDir)
	}

	s.records = records
	s.current = 0
	s.path = file
	s.previewDir = previewDir

	log.WithFields(log.Fields{
		"file":    file,
		"records": len(records),
	}).Info("Loaded review file")
	return nil
}

type previewResult struct {
	idx  int
	path string
}

func (s *Session) renderPreviews(records []Record, dir string) {
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}

	render := func(i int) (previewResult, error) {
		p, err := s.preview(i+1, records[i], dir)
		if err != nil {
			log.WithFields(log.Fields{
				"line":  i + 1,
				"url":   records[i].URL,
				"error": err,
			}).Warn("Preview unavailable")
		}
		return previewResult{idx: i, path: p}, nil
	}

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	// render never fails, so Run cannot either.
	results, _ := parallel.Run(render, idx, workers)
	for _, r := range results {
		records[r.idx].Preview = r.path
	}
}

// PreviewName is the file name of the preview for the record on the given
// 1-based line: the line number and the URL basename, query stripped.
func PreviewName(line int, url string) string {
	u, _, _ := strings.Cut(url, "?")
	return fmt.Sprintf("%d_%s", line, path.Base(u))
}

func (s *Session) preview(line int, rec Record, dir string) (string, error) {
	data, err := s.Fetcher.Fetch(rec.URL)
	if err != nil {
		return "", err
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, PreviewName(line, rec.URL))
	if err := imaging.Save(imaging.Annotate(img, rec.Caption), out); err != nil {
		return "", err
	}
	return out, nil
}

// Records returns a copy of every record, deleted ones included.
func (s *Session) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Current returns the current record.
func (s *Session) Current() (Record, error) {
	if s.State() == Empty {
		return Record{}, ErrEmpty
	}
	return s.records[s.current], nil
}

// Position returns the 1-based position of the current record and the
// record count. Both are zero when empty.
func (s *Session) Position() (pos, total int) {
	if s.State() == Empty {
		return 0, 0
	}
	return s.current + 1, len(s.records)
}

// Next moves to the following record. It reports whether the position
// changed; at the last record it does nothing.
func (s *Session) Next() bool {
	if s.current >= len(s.records)-1 {
		return false
	}
	s.current++
	return true
}

// Prev moves to the previous record. At the first record it does nothing.
func (s *Session) Prev() bool {
	if s.State() == Empty || s.current == 0 {
		return false
	}
	s.current--
	return true
}

// Seek jumps to a 1-based position. Positions out of range are ignored.
func (s *Session) Seek(pos int) bool {
	if pos < 1 || pos > len(s.records) {
		return false
	}
	s.current = pos - 1
	return true
}

// Save stores the trimmed text as the current record's label.
func (s *Session) Save(text string) error {
	if s.State() == Empty {
		return ErrEmpty
	}
	s.records[s.current].Label = strings.TrimSpace(text)
	return nil
}

// Delete marks the current record as removed and moves to the next one.
// Indices do not shift.
func (s *Session) Delete() error {
	if s.State() == Empty {
		return ErrEmpty
	}
	s.records[s.current].Deleted = true
	s.Next()
	return nil
}

// Export writes every record that is not deleted to file, one line each.
// It returns the number of records written.
func (s *Session) Export(file string) (int, error) {
	if s.State() == Empty {
		return 0, ErrEmpty
	}
	lines := make([]string, 0, len(s.records))
	for _, r := range s.records {
		if !r.Deleted {
			lines = append(lines, r.Line())
		}
	}
	if err := fsutil.WriteLines(file, lines); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"file":    file,
		"records": len(lines),
	}).Info("Exported review file")
	return len(lines), nil
}
