package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/clausula/internal/model"
)

// MockExtractor implements Extractor
type MockExtractor struct {
	ShouldError bool
}

func (m *MockExtractor) ExtractFile(ctx context.Context, data []byte, filename string) (*model.Extraction, error) {
	time.Sleep(5 * time.Millisecond)
	if m.ShouldError {
		return nil, errors.New("extract error")
	}
	owner := string(data)
	rec := model.NewRecord()
	rec.OwnerName = &owner
	return &model.Extraction{Extracted: rec, TextPreview: filename}, nil
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.pdf": "A", "b.docx": "B", "c.pdf": "C"})
	paths := []string{
		filepath.Join(dir, "c.pdf"),
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.docx"),
	}

	processor := NewBatchProcessor(&MockExtractor{}, 2)
	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
			continue
		}
		if res.Path != paths[i] {
			t.Errorf("expected results in input order, got %s at %d", res.Path, i)
		}
		if res.Extraction.TextPreview != filepath.Base(paths[i]) {
			t.Errorf("expected base name passed to extractor, got %s", res.Extraction.TextPreview)
		}
	}

	if owner := *results[0].Extraction.Extracted.OwnerName; owner != "C" {
		t.Errorf("expected content of c.pdf, got %s", owner)
	}
}

func TestBatchProcessor_ProcessPaths_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.pdf": "A"})

	processor := NewBatchProcessor(&MockExtractor{ShouldError: true}, 2)
	results := processor.ProcessPaths(context.Background(), []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "missing.pdf"),
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error == nil {
			t.Errorf("expected error for %s", res.Path)
		}
		if res.Extraction != nil {
			t.Error("expected nil extraction on error")
		}
	}
	if !strings.Contains(results[1].Error.Error(), "read file") {
		t.Errorf("expected read error for missing file, got %v", results[1].Error)
	}

	summary := Summarize(processor.RunID(), results)
	if summary.Failed != 2 || summary.Succeeded != 0 || summary.Total != 2 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockExtractor{}, 2)

	results := processor.ProcessPaths(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessPaths_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.pdf": "A", "b.pdf": "B"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&MockExtractor{}, 1)
	results := processor.ProcessPaths(ctx, []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.pdf")})

	if len(results) != 2 {
		t.Fatalf("expected a result per path, got %d", len(results))
	}
	for _, res := range results {
		if !errors.Is(res.Error, context.Canceled) {
			t.Errorf("expected context.Canceled for %s, got %v", res.Path, res.Error)
		}
	}
}

func TestBatchProcessor_RunID(t *testing.T) {
	a := NewBatchProcessor(&MockExtractor{}, 1)
	b := NewBatchProcessor(&MockExtractor{}, 1)

	if _, err := uuid.Parse(a.RunID()); err != nil {
		t.Errorf("expected a UUID run ID, got %q", a.RunID())
	}
	if a.RunID() == b.RunID() {
		t.Error("expected distinct run IDs")
	}
}

func TestListContracts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.PDF":              "",
		"a.docx":             "",
		"notas.txt":          "",
		"sub/c.pdf":          "",
		".git/objects/x.pdf": "",
	})

	paths, err := ListContracts(dir, []string{".pdf", ".docx"})
	if err != nil {
		t.Fatalf("ListContracts failed: %v", err)
	}

	expected := []string{
		filepath.Join(dir, "a.docx"),
		filepath.Join(dir, "b.PDF"),
		filepath.Join(dir, "sub", "c.pdf"),
	}
	if len(paths) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, paths)
	}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, paths[i])
		}
	}
}

func TestBatchProcessor_ProcessDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.pdf": "A", "b.docx": "B", "leer.md": "x"})

	processor := NewBatchProcessor(&MockExtractor{}, 2)
	results, err := processor.ProcessDir(context.Background(), dir, []string{".pdf", ".docx"})
	if err != nil {
		t.Fatalf("ProcessDir failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestReadPathsFromFile(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "abs.pdf")
	content := "uno.pdf\n# comment\nsub/dos.docx\n   \n" + abs + "   \nuno.pdf\n"
	list := filepath.Join(dir, "lista.txt")
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(list)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	expected := []string{
		filepath.Join(dir, "uno.pdf"),
		filepath.Join(dir, "sub", "dos.docx"),
		abs,
	}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d: %v", len(expected), len(paths), paths)
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	_, err := ReadPathsFromFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.pdf": "A", "b.pdf": "B", "lista.txt": "a.pdf\nb.pdf\n"})

	processor := NewBatchProcessor(&MockExtractor{}, 2)
	results, err := processor.ProcessFile(context.Background(), filepath.Join(dir, "lista.txt"))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
	}
}

func TestExtractResult_GetError(t *testing.T) {
	r1 := &ExtractResult{Path: "a.pdf"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("extract failed")
	r2 := &ExtractResult{Path: "a.pdf", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
