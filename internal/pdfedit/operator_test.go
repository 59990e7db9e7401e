package pdfedit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// writeTestPDF writes a minimal, well-formed PDF with n empty pages and a
// document information dictionary, computing the xref offsets as it goes.
func writeTestPDF(t *testing.T, dir, name string, n int, title string) string {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	// 1: catalog, 2: pages, 3: shared content, 4..: pages, last: info
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 4+i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [ %s] /Count %d >>", kids, n))
	obj("<< /Length 3 >>\nstream\nq Q\nendstream")
	for i := 0; i < n; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 100] /Resources << >> /Contents 3 0 R >>")
	}
	obj(fmt.Sprintf("<< /Title (%s) /Author (Tester) /Creator (cvdata) /Producer (handmade) /Subject (fixture) >>", title))

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R >>\n", len(offsets)+1, len(offsets))
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write PDF: %v", err)
	}
	return path
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	if err != nil {
		t.Fatalf("PageCountFile(%s) failed: %v", path, err)
	}
	return n
}

func TestOpen_Meta(t *testing.T) {
	path := writeTestPDF(t, t.TempDir(), "doc.pdf", 3, "Sample")

	op, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	meta := op.Meta()
	if meta.NPages != 3 {
		t.Errorf("NPages: got %d, want 3", meta.NPages)
	}
	if meta.Title != "Sample" || meta.Author != "Tester" {
		t.Errorf("unexpected meta: %+v", meta)
	}
	if len(op.Pages()) != 3 {
		t.Errorf("Pages: got %d, want 3", len(op.Pages()))
	}
}

func TestOpen_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pdf")
	if err := os.WriteFile(bad, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(bad); err == nil {
		t.Error("Open should fail for a non-PDF file")
	}
	if _, err := Open(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("Open should fail for a missing file")
	}
}

func TestRotate(t *testing.T) {
	op, err := Open(writeTestPDF(t, t.TempDir(), "doc.pdf", 2, "Rot"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tests := []struct {
		angle int
		want  int
	}{
		{90, 90},
		{180, 270},
		{-90, 180},
		{360, 180},
		{-540, 0},
	}
	for _, tt := range tests {
		if err := op.Rotate(0, tt.angle); err != nil {
			t.Fatalf("Rotate(%d) failed: %v", tt.angle, err)
		}
		if got := op.Pages()[0].Rotation; got != tt.want {
			t.Errorf("after Rotate(%d): got %d, want %d", tt.angle, got, tt.want)
		}
	}

	if err := op.Rotate(0, 45); !errors.Is(err, ErrInvalidAngle) {
		t.Errorf("expected ErrInvalidAngle, got %v", err)
	}
	if err := op.Rotate(5, 90); !errors.Is(err, ErrPageIndex) {
		t.Errorf("expected ErrPageIndex, got %v", err)
	}
}

func TestDelete_StableIndices(t *testing.T) {
	op, err := Open(writeTestPDF(t, t.TempDir(), "doc.pdf", 3, "Del"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := op.Delete(1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := op.Delete(1); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if op.Meta().NPages != 2 {
		t.Errorf("NPages: got %d, want 2", op.Meta().NPages)
	}

	// Index 2 still names the original third page.
	if err := op.Rotate(2, 90); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	pages := op.Pages()
	if pages[2].Number != 3 || pages[2].Rotation != 90 {
		t.Errorf("page 2: got %+v", pages[2])
	}
	if err := op.Rotate(1, 90); !errors.Is(err, ErrPageDeleted) {
		t.Errorf("expected ErrPageDeleted, got %v", err)
	}
	if err := op.Delete(-1); !errors.Is(err, ErrPageIndex) {
		t.Errorf("expected ErrPageIndex, got %v", err)
	}
}

func TestSave_DeleteRotateAppend(t *testing.T) {
	dir := t.TempDir()
	src := writeTestPDF(t, dir, "doc.pdf", 3, "Main")
	extra := writeTestPDF(t, dir, "extra.pdf", 2, "Extra")
	out := filepath.Join(dir, "out.pdf")

	op, err := Open(src)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := op.Append(extra); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if op.Meta().NPages != 5 {
		t.Errorf("NPages after append: got %d, want 5", op.Meta().NPages)
	}
	if err := op.Delete(0); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := op.Rotate(4, 90); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	if err := op.Save(out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if got := pageCount(t, out); got != 4 {
		t.Errorf("saved pages: got %d, want 4", got)
	}
	if got := pageCount(t, src); got != 3 {
		t.Errorf("source must be untouched, got %d pages", got)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(raw, []byte("/Rotate 90")) {
		t.Error("saved file should carry the page rotation")
	}
}

func TestSave_InPlace(t *testing.T) {
	src := writeTestPDF(t, t.TempDir(), "doc.pdf", 3, "InPlace")

	op, err := Open(src)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := op.Delete(2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := op.Save(""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if got := pageCount(t, src); got != 2 {
		t.Errorf("saved pages: got %d, want 2", got)
	}
	if len(op.Pages()) != 2 || op.Pages()[1].Deleted {
		t.Errorf("operator should reflect the saved file: %+v", op.Pages())
	}
}

func TestSave_NoPages(t *testing.T) {
	op, err := Open(writeTestPDF(t, t.TempDir(), "doc.pdf", 1, "Empty"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := op.Delete(0); err != nil {
		t.Fatal(err)
	}
	if err := op.Save(""); !errors.Is(err, ErrNoPages) {
		t.Errorf("expected ErrNoPages, got %v", err)
	}
}
