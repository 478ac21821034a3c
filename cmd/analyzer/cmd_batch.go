package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crashb/javascript-analyzer/internal/batch"
	"github.com/crashb/javascript-analyzer/internal/exercises"
	"github.com/crashb/javascript-analyzer/internal/store"
)

var (
	batchWorkers  int
	batchFailFast bool
	batchNoStore  bool
)

// batchCmd analyzes a whole submission corpus
var batchCmd = &cobra.Command{
	Use:   "batch [exercise] [corpus-dir]",
	Short: "Analyze every submission in a corpus directory",
	Long: `Analyzes every immediate subdirectory of the corpus directory as one
submission, with bounded concurrency.

Results are persisted to the local store, deduplicated by solution hash,
and a verdict summary is printed when the run completes. The command
exits nonzero when any submission fails to analyze.

Example:
  analyzer batch resistor-color-duo ./corpus --workers 8
  analyzer batch resistor-color-duo ./corpus --fail-fast`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Concurrent workers (default: from config)")
	batchCmd.Flags().BoolVar(&batchFailFast, "fail-fast", false, "Stop on the first failing submission")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "Skip persisting results to the local store")
}

// runBatch runs the analyzer over a submission corpus
func runBatch(cmd *cobra.Command, args []string) error {
	slug, corpusDir := args[0], args[1]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	workers := batchWorkers
	if workers < 1 {
		workers = cfg.Batch.Workers
	}
	failFast := batchFailFast || cfg.Batch.FailFast

	var st *store.LocalStore
	if !batchNoStore {
		var err error
		st, err = store.NewLocalStore(cfg.Store.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()
	}

	runner := batch.NewRunner(exercises.DefaultRegistry(), logger, st)
	summary, err := runner.Run(ctx, slug, corpusDir, batch.Options{Workers: workers, FailFast: failFast})
	if err != nil {
		return err
	}

	fmt.Print(batch.RenderSummary(summary))

	if summary.Failures > 0 {
		return fmt.Errorf("%d of %d submissions failed to analyze", summary.Failures, len(summary.Items))
	}
	return nil
}
