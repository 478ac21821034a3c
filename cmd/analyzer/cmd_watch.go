package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/exercises"
	"github.com/crashb/javascript-analyzer/internal/store"
	"github.com/crashb/javascript-analyzer/internal/watch"
)

// watchCmd watches a spool directory for dropped solutions
var watchCmd = &cobra.Command{
	Use:   "watch [exercise] [spool-dir]",
	Short: "Watch a spool directory and analyze dropped solutions",
	Long: `Watches a directory for new or changed solution files and analyzes each
one after it settles. The verdict is written as analysis.json next to the
solution and persisted to the local store.

Files already sitting in the spool are analyzed on startup. Stop with
Ctrl-C; event statistics are printed on exit.

Example:
  analyzer watch resistor-color-duo ./spool`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

// runWatch runs the spool watcher until interrupted
func runWatch(cmd *cobra.Command, args []string) error {
	slug, dir := args[0], args[1]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.NewLocalStore(cfg.Store.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	// Events are dispatched one at a time, so a single runner is safe here.
	runner := analyzer.NewRunner(exercises.DefaultRegistry(), logger)

	handler := func(ctx context.Context, path string) {
		source, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read solution", zap.String("path", path), zap.Error(err))
			return
		}

		start := time.Now()
		result, err := runner.AnalyzeSource(ctx, slug, filepath.Base(path), source)
		if err != nil {
			logger.Error("analysis failed", zap.String("path", path), zap.Error(err))
			return
		}
		elapsed := time.Since(start)

		if _, err := analyzer.WriteResultFile(result, filepath.Dir(path)); err != nil {
			logger.Error("failed to write analysis.json", zap.String("path", path), zap.Error(err))
		}
		if _, err := st.SaveResult(slug, path, source, result, elapsed); err != nil {
			logger.Warn("failed to persist analysis", zap.String("path", path), zap.Error(err))
		}

		logger.Info("solution analyzed",
			zap.String("path", path),
			zap.String("status", string(result.Verdict)),
			zap.Int("comments", len(result.Comments)),
			zap.Duration("elapsed", elapsed))
	}

	watcher, err := watch.NewSpoolWatcher(dir, cfg.GetDebounce(), handler, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	// Drain anything already sitting in the spool.
	if err := watcher.TriggerScan(ctx); err != nil {
		logger.Warn("initial spool scan failed", zap.Error(err))
	}

	fmt.Printf("Watching %s for %s solutions. Press Ctrl-C to stop.\n", dir, slug)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	watcher.Stop()

	stats := watcher.GetStats()
	fmt.Println("\nWatcher statistics:")
	fmt.Printf("  Files created:   %d\n", stats.FilesCreated)
	fmt.Printf("  Files modified:  %d\n", stats.FilesModified)
	fmt.Printf("  Files deleted:   %d\n", stats.FilesDeleted)
	fmt.Printf("  Runs triggered:  %d\n", stats.RunsTriggered)
	fmt.Printf("  Errors:          %d\n", stats.Errors)
	if !stats.LastEventTime.IsZero() {
		fmt.Printf("  Last event:      %s %s at %s\n",
			stats.LastEventType, stats.LastEventPath, stats.LastEventTime.Format(time.RFC3339))
	}
	return nil
}
