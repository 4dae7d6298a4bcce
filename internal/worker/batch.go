package worker

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/clausula/internal/logger"
	"github.com/ppiankov/clausula/internal/model"
)

// Extractor defines the interface for extracting one contract file
type Extractor interface {
	ExtractFile(ctx context.Context, data []byte, filename string) (*model.Extraction, error)
}

// ExtractJob reads one file from disk and extracts it
type ExtractJob struct {
	Index     int
	Path      string
	Extractor Extractor
}

// Execute executes the extraction job
func (j *ExtractJob) Execute(ctx context.Context) Result {
	start := time.Now()
	res := &ExtractResult{Index: j.Index, Path: j.Path}

	if err := ctx.Err(); err != nil {
		res.Error = err
		return res
	}

	data, err := os.ReadFile(j.Path)
	if err != nil {
		res.Error = fmt.Errorf("read file: %w", err)
		res.Duration = time.Since(start)
		return res
	}

	res.Extraction, res.Error = j.Extractor.ExtractFile(ctx, data, filepath.Base(j.Path))
	res.Duration = time.Since(start)
	return res
}

// ExtractResult represents the result of an extraction job
type ExtractResult struct {
	Index      int
	Path       string
	Extraction *model.Extraction
	Error      error
	Duration   time.Duration
}

// GetError returns the error from the extraction result
func (r *ExtractResult) GetError() error {
	return r.Error
}

// Summary counts the outcome of a batch run
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
}

// BatchProcessor extracts many files concurrently
type BatchProcessor struct {
	extractor   Extractor
	concurrency int
	runID       string
}

// NewBatchProcessor creates a new batch processor with a fresh run ID
func NewBatchProcessor(extractor Extractor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		extractor:   extractor,
		concurrency: concurrency,
		runID:       uuid.NewString(),
	}
}

// RunID identifies this batch in logs and output
func (b *BatchProcessor) RunID() string {
	return b.runID
}

// ProcessPaths extracts every path and returns the results in input order
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ExtractResult {
	if len(paths) == 0 {
		return []*ExtractResult{}
	}

	log := logger.FromContext(ctx).With("run_id", b.runID)
	log.Info("Batch started", "files", len(paths), "workers", b.concurrency)

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	submitted := 0
	for i, path := range paths {
		if !pool.Submit(&ExtractJob{Index: i, Path: path, Extractor: b.extractor}) {
			break
		}
		submitted++
	}

	results := pool.Wait()

	out := make([]*ExtractResult, len(paths))
	for _, r := range results {
		res := r.(*ExtractResult)
		out[res.Index] = res
	}
	// Jobs never submitted or dropped on cancellation still get a result
	for i := range out {
		if out[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &ExtractResult{Index: i, Path: paths[i], Error: err}
		}
	}

	summary := Summarize(b.runID, out)
	log.Info("Batch finished", "submitted", submitted, "succeeded", summary.Succeeded, "failed", summary.Failed)

	return out
}

// ProcessDir extracts every file under dir whose extension is in exts
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string, exts []string) ([]*ExtractResult, error) {
	paths, err := ListContracts(dir, exts)
	if err != nil {
		return nil, err
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ProcessFile reads paths from a list file and extracts them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*ExtractResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// Summarize counts successes and failures
func Summarize(runID string, results []*ExtractResult) Summary {
	s := Summary{RunID: runID, Total: len(results)}
	for _, r := range results {
		if r.Error != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}

// ListContracts walks dir and returns the files with an accepted extension,
// sorted by path
func ListContracts(dir string, exts []string) ([]string, error) {
	accepted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		accepted[strings.ToLower(ext)] = true
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if accepted[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// ReadPathsFromFile reads file paths from a list (one per line). Relative
// paths are resolved against the list file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
