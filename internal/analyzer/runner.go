package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/crashb/javascript-analyzer/internal/extract"
)

// SolutionExtensions are the submission file extensions probed in order.
var SolutionExtensions = []string{".js", ".mjs", ".cjs", ".ts"}

// Runner drives one analysis at a time: parse, dispatch to the registered
// exercise, return the result. A Runner is not safe for concurrent use;
// create one per worker.
type Runner struct {
	registry  *Registry
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewRunner creates a runner over a registry. A nil logger disables logging.
func NewRunner(registry *Registry, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		registry:  registry,
		extractor: extract.NewExtractor(),
		logger:    logger,
	}
}

// AnalyzeSource runs one submission through its exercise analyzer. The
// filename selects the grammar; the source bytes are the submission.
func (r *Runner) AnalyzeSource(ctx context.Context, slug, filename string, source []byte) (*Result, error) {
	ex, err := r.registry.Lookup(slug)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	prog, err := r.extractor.Parse(ctx, filename, source)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", slug, err)
	}
	defer prog.Close()

	result, err := ex.Analyze(ctx, prog)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", slug, err)
	}

	r.logger.Debug("analysis complete",
		zap.String("exercise", slug),
		zap.String("file", filename),
		zap.String("status", string(result.Verdict)),
		zap.Int("comments", len(result.Comments)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// AnalyzeDir locates the solution file for a slug inside dir and analyzes
// it. The resolved path is returned alongside the result.
func (r *Runner) AnalyzeDir(ctx context.Context, slug, dir string) (*Result, string, error) {
	path, err := FindSolutionFile(slug, dir)
	if err != nil {
		return nil, "", err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read solution: %w", err)
	}

	result, err := r.AnalyzeSource(ctx, slug, filepath.Base(path), source)
	if err != nil {
		return nil, path, err
	}
	return result, path, nil
}

// FindSolutionFile locates the submission file named after the slug.
func FindSolutionFile(slug, dir string) (string, error) {
	for _, ext := range SolutionExtensions {
		path := filepath.Join(dir, slug+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("no solution file for %s in %s", slug, dir)
}

// WriteResultFile writes analysis.json into the output directory and returns
// the written path.
func WriteResultFile(result *Result, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(outputDir, "analysis.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
