// Package batch runs the analyzer over a submission corpus. Layout follows
// the exercism dumps: each immediate subdirectory of the corpus dir holds
// one submission file named after the exercise slug.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/store"
)

// Item is the outcome for one submission directory.
type Item struct {
	Dir          string
	SolutionPath string
	Result       *analyzer.Result
	Err          error
	Elapsed      time.Duration
}

// Summary aggregates one corpus run.
type Summary struct {
	Items    []Item
	Counts   map[analyzer.Verdict]int
	Comments map[string]int
	Failures int
	Elapsed  time.Duration
}

// Options tune a corpus run.
type Options struct {
	// Workers bounds concurrency. Each worker owns its own parser.
	Workers int

	// FailFast aborts the whole run on the first processing error instead
	// of recording it and moving on.
	FailFast bool
}

// Runner executes corpus runs.
type Runner struct {
	registry *analyzer.Registry
	logger   *zap.Logger
	store    *store.LocalStore
}

// NewRunner creates a corpus runner. logger may be nil; store may be nil to
// skip persistence.
func NewRunner(registry *analyzer.Registry, logger *zap.Logger, st *store.LocalStore) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{registry: registry, logger: logger, store: st}
}

// Run analyzes every submission directory under corpusDir.
func (r *Runner) Run(ctx context.Context, slug, corpusDir string, opts Options) (*Summary, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	dirs, err := submissionDirs(corpusDir)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	items := make([]Item, len(dirs))

	type job struct {
		index int
		dir   string
	}
	jobs := make(chan job)

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < opts.Workers; i++ {
		group.Go(func() error {
			// Parsers are not safe for concurrent use, so each worker
			// carries its own.
			worker := analyzer.NewRunner(r.registry, r.logger)

			for j := range jobs {
				item := r.analyzeOne(groupCtx, worker, slug, j.dir)

				mu.Lock()
				items[j.index] = item
				mu.Unlock()

				if item.Err != nil && opts.FailFast {
					return fmt.Errorf("%s: %w", j.dir, item.Err)
				}
			}
			return nil
		})
	}

	group.Go(func() error {
		defer close(jobs)
		for i, dir := range dirs {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case jobs <- job{index: i, dir: dir}:
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		Items:    items,
		Counts:   make(map[analyzer.Verdict]int),
		Comments: make(map[string]int),
		Elapsed:  time.Since(start),
	}
	for _, item := range items {
		if item.Err != nil {
			summary.Failures++
			continue
		}
		summary.Counts[item.Result.Verdict]++
		for _, c := range item.Result.Comments {
			summary.Comments[c.ID]++
		}
	}

	r.logger.Info("corpus run complete",
		zap.String("exercise", slug),
		zap.Int("submissions", len(items)),
		zap.Int("failures", summary.Failures),
		zap.Duration("elapsed", summary.Elapsed))

	return summary, nil
}

// analyzeOne runs a single submission directory, persisting on success.
func (r *Runner) analyzeOne(ctx context.Context, worker *analyzer.Runner, slug, dir string) Item {
	item := Item{Dir: dir}
	start := time.Now()

	path, err := analyzer.FindSolutionFile(slug, dir)
	if err != nil {
		item.Err = err
		return item
	}
	item.SolutionPath = path

	source, err := os.ReadFile(path)
	if err != nil {
		item.Err = fmt.Errorf("read solution: %w", err)
		return item
	}

	result, err := worker.AnalyzeSource(ctx, slug, filepath.Base(path), source)
	item.Elapsed = time.Since(start)
	if err != nil {
		item.Err = err
		return item
	}
	item.Result = result

	if r.store != nil {
		if _, err := r.store.SaveResult(slug, path, source, result, item.Elapsed); err != nil {
			r.logger.Warn("failed to persist analysis", zap.String("path", path), zap.Error(err))
		}
	}

	return item
}

// submissionDirs lists the immediate subdirectories of corpusDir in name
// order, which keeps runs reproducible.
func submissionDirs(corpusDir string) ([]string, error) {
	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(corpusDir, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// RenderSummary renders verdict and comment counts as console tables.
func RenderSummary(s *Summary) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Status", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, verdict := range []analyzer.Verdict{
		analyzer.VerdictApproved,
		analyzer.VerdictDisapproved,
		analyzer.VerdictReferredToMentor,
	} {
		table.Append([]string{string(verdict), fmt.Sprintf("%d", s.Counts[verdict])})
	}
	if s.Failures > 0 {
		table.Append([]string{"failed", fmt.Sprintf("%d", s.Failures)})
	}
	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(s.Items)),
		s.Elapsed.Round(time.Millisecond).String(),
	})
	table.Render()

	if len(s.Comments) > 0 {
		buf.WriteString("\n")

		ids := make([]string, 0, len(s.Comments))
		for id := range s.Comments {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		comments := tablewriter.NewWriter(&buf)
		comments.SetHeader([]string{"Comment", "Count"})
		comments.SetBorder(false)
		comments.SetCenterSeparator("")
		comments.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})
		for _, id := range ids {
			comments.Append([]string{id, fmt.Sprintf("%d", s.Comments[id])})
		}
		comments.Render()
	}

	return buf.String()
}
