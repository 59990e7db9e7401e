package cvat

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleExport = `<?xml version="1.0" encoding="utf-8"?>
<annotations>
  <version>1.1</version>
  <meta>
    <task>
      <id>7</id>
      <name>street</name>
      <size>10</size>
      <segments>
        <segment>
          <id>1</id>
          <start>1</start>
          <stop>5</stop>
          <url>http://cvat.local:8080/?id=10</url>
        </segment>
        <segment>
          <id>2</id>
          <start>6</start>
          <stop>10</stop>
          <url>http://cvat.local:8080/?id=11</url>
        </segment>
      </segments>
    </task>
  </meta>
  <image id="1" name="batch/a.jpg" width="640" height="480">
    <polygon label="car" occluded="0" points="0,0;10,0;10,10;0,10" z_order="0" group_id="3"/>
    <polygon label="person" occluded="1" points="20,20;30,20;30,30" z_order="1"/>
    <polygon label="car" occluded="0" points="50,50;60,50;60,60" z_order="0" group_id="3">
      <attribute name="iscrowd">true</attribute>
    </polygon>
    <polygon label="tree" occluded="0" points="1,1;2,2;3,1" z_order="0" group_id="4"/>
  </image>
  <image id="6" name="batch/b.jpg" width="640" height="480">
  </image>
</annotations>
`

func parseSample(t *testing.T, doc string, opts Options) *Project {
	t.Helper()
	p, err := Parse(strings.NewReader(doc), "sample", opts)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return p
}

func TestParse_Metadata(t *testing.T) {
	p := parseSample(t, sampleExport, Options{})

	if p.Name() != "sample" {
		t.Errorf("Name: got %q, want sample", p.Name())
	}
	if p.TaskID() != 7 {
		t.Errorf("TaskID: got %d, want 7", p.TaskID())
	}
	if p.TaskName() != "street" {
		t.Errorf("TaskName: got %q, want street", p.TaskName())
	}

	segs := p.Segments()
	if len(segs) != 2 {
		t.Fatalf("Segments: got %d, want 2", len(segs))
	}
	if segs[0].JobID != 10 || segs[1].JobID != 11 {
		t.Errorf("job ids: got %d,%d want 10,11", segs[0].JobID, segs[1].JobID)
	}
}

func TestParse_GroupMerge(t *testing.T) {
	p := parseSample(t, sampleExport, Options{})

	img, ok := p.Image("a.jpg")
	if !ok {
		t.Fatal("image a.jpg not found")
	}
	if img.FrameID != 1 || img.Width != 640 || img.Height != 480 {
		t.Errorf("unexpected image header: %+v", img)
	}
	if len(img.Annotations) != 3 {
		t.Fatalf("Annotations: got %d, want 3", len(img.Annotations))
	}

	car := img.Annotations[0]
	if car.Label != "car" || car.GroupID != "3" {
		t.Errorf("first annotation: got %s/%s, want car/3", car.Label, car.GroupID)
	}
	if len(car.Rings) != 2 {
		t.Fatalf("car rings: got %d, want 2", len(car.Rings))
	}
	if len(car.Rings[0]) != 4 || len(car.Rings[1]) != 3 {
		t.Errorf("ring order not preserved: %d,%d", len(car.Rings[0]), len(car.Rings[1]))
	}
	if car.Rings[1][0].X != 50 {
		t.Errorf("second ring should come from the later record, got %+v", car.Rings[1][0])
	}
	if !car.Crowd {
		t.Error("crowd flag should be ORed across the group")
	}

	person := img.Annotations[1]
	if person.Label != "person" || person.HasGroup() {
		t.Errorf("second annotation: got %s group=%q", person.Label, person.GroupID)
	}
	if !person.Occluded {
		t.Error("person should be occluded")
	}

	if img.Annotations[2].Label != "tree" {
		t.Errorf("third annotation: got %s, want tree", img.Annotations[2].Label)
	}

	empty, ok := p.Image("b.jpg")
	if !ok {
		t.Fatal("image b.jpg not found")
	}
	if empty.Annotated() {
		t.Error("b.jpg should have no annotations")
	}
}

func TestParse_LabelMismatch(t *testing.T) {
	doc := strings.Replace(sampleExport,
		`<polygon label="car" occluded="0" points="50,50`,
		`<polygon label="bus" occluded="0" points="50,50`, 1)

	_, err := Parse(strings.NewReader(doc), "sample", Options{})
	if err == nil {
		t.Fatal("expected label mismatch error")
	}
	if !errors.Is(err, ErrLabelMismatch) {
		t.Fatalf("error should wrap ErrLabelMismatch: %v", err)
	}

	var merr *MergeError
	if !errors.As(err, &merr) {
		t.Fatalf("error should be a *MergeError: %T", err)
	}
	if merr.FrameID != 1 || merr.Name != "batch/a.jpg" {
		t.Errorf("context: got frame %d name %q", merr.FrameID, merr.Name)
	}
	if merr.URL != "http://cvat.local/jobs/10?frame=1" {
		t.Errorf("URL: got %q", merr.URL)
	}
	if !strings.Contains(err.Error(), "a.jpg") {
		t.Errorf("message should name the file: %v", err)
	}
}

func TestFrameToJob(t *testing.T) {
	p := parseSample(t, sampleExport, Options{})

	tests := []struct {
		frame   int
		wantJob int
		wantErr bool
	}{
		{1, 10, false},
		{5, 10, false},
		{6, 11, false},
		{10, 11, false},
		{0, 0, true},
		{11, 0, true},
	}

	for _, tt := range tests {
		job, err := p.FrameToJob(tt.frame)
		if tt.wantErr {
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("frame %d: expected ErrOutOfRange, got %v", tt.frame, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("frame %d: unexpected error %v", tt.frame, err)
			continue
		}
		if job != tt.wantJob {
			t.Errorf("frame %d: got job %d, want %d", tt.frame, job, tt.wantJob)
		}
	}
}

func TestFrameToJob_Overlap(t *testing.T) {
	doc := strings.Replace(sampleExport, "<start>6</start>", "<start>5</start>", 1)
	p := parseSample(t, doc, Options{})

	if _, err := p.FrameToJob(5); !errors.Is(err, ErrAmbiguousFrame) {
		t.Errorf("expected ErrAmbiguousFrame, got %v", err)
	}
}

func TestURLs(t *testing.T) {
	p := parseSample(t, sampleExport, Options{})

	if p.URL() != "http://cvat.local" {
		t.Errorf("URL: got %q", p.URL())
	}
	if got := p.JobURL(11); got != "http://cvat.local/jobs/11" {
		t.Errorf("JobURL: got %q", got)
	}

	got, err := p.FrameURL(7)
	if err != nil || got != "http://cvat.local/jobs/11?frame=7" {
		t.Errorf("FrameURL: got %q, %v", got, err)
	}

	got, err = p.ImageURL("b.jpg")
	if err != nil || got != "http://cvat.local/jobs/11?frame=6" {
		t.Errorf("ImageURL: got %q, %v", got, err)
	}

	if _, err := p.ImageURL("missing.jpg"); !errors.Is(err, ErrUnknownImage) {
		t.Errorf("expected ErrUnknownImage, got %v", err)
	}
}

func TestURLs_ConfiguredBase(t *testing.T) {
	p := parseSample(t, sampleExport, Options{BaseURL: "https://labels.example.com/"})

	got, err := p.ImageURL("a.jpg")
	if err != nil {
		t.Fatalf("ImageURL failed: %v", err)
	}
	if got != "https://labels.example.com/jobs/10?frame=1" {
		t.Errorf("ImageURL: got %q", got)
	}
}

func TestStats(t *testing.T) {
	st := parseSample(t, sampleExport, Options{}).Stats()

	if st.Images != 2 || st.Annotated != 1 || st.Annotations != 3 || st.Crowd != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if st.Labels["car"] != 1 || st.Labels["person"] != 1 || st.Labels["tree"] != 1 {
		t.Errorf("unexpected label counts: %v", st.Labels)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task_7.xml")
	if err := os.WriteFile(path, []byte(sampleExport), 0o644); err != nil {
		t.Fatalf("failed to write export: %v", err)
	}

	p, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if p.Name() != "task_7" {
		t.Errorf("Name: got %q, want task_7", p.Name())
	}
	if len(p.Images()) != 2 {
		t.Errorf("Images: got %d, want 2", len(p.Images()))
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open("/nonexistent/export.xml", Options{}); err == nil {
		t.Error("Open should fail for a missing file")
	}
}

func TestParse_BadPoints(t *testing.T) {
	doc := strings.Replace(sampleExport, `points="20,20;30,20;30,30"`, `points="20,20;oops"`, 1)
	if _, err := Parse(strings.NewReader(doc), "sample", Options{}); err == nil {
		t.Error("expected error for malformed points")
	}
}

func TestJobIDFromURL(t *testing.T) {
	tests := []struct {
		url      string
		fallback int
		want     int
	}{
		{"http://host:8080/?id=12", 1, 12},
		{"http://host:8080/api/jobs/34", 1, 34},
		{"http://host:8080/api/jobs/34/", 1, 34},
		{"", 5, 5},
		{"http://host/?id=abc", 9, 9},
	}
	for _, tt := range tests {
		if got := jobIDFromURL(tt.url, tt.fallback); got != tt.want {
			t.Errorf("jobIDFromURL(%q): got %d, want %d", tt.url, got, tt.want)
		}
	}
}
