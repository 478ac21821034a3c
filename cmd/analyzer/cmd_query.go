package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/exercises"
	"github.com/crashb/javascript-analyzer/internal/extract"
)

// queryCmd prints the derived fact base for one submission
var queryCmd = &cobra.Command{
	Use:   "query <exercise-slug> <input-dir> [predicate]",
	Short: "Query derived facts for a submission",
	Long: `Evaluates one submission and prints the facts the rule kernel derived
from it, without writing a result file.

With a predicate, prints only the facts for that predicate. Without one,
prints every predicate that derived at least one fact. This is the glass
box view: every verdict the analyzer reaches can be traced back to the
facts shown here.

Example:
  analyzer query resistor-color-duo ./solution
  analyzer query resistor-color-duo ./solution optimal_table`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runQueryFacts,
}

// runQueryFacts evaluates the submission and prints derived facts
func runQueryFacts(cmd *cobra.Command, args []string) error {
	slug, dir := args[0], args[1]

	ex, err := exercises.DefaultRegistry().Lookup(slug)
	if err != nil {
		return err
	}
	insp, ok := ex.(analyzer.Inspector)
	if !ok {
		return fmt.Errorf("exercise %q has no inspection surface", slug)
	}

	path, err := analyzer.FindSolutionFile(slug, dir)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read solution: %w", err)
	}

	logger.Debug("querying facts", zap.String("exercise", slug), zap.String("file", path))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	prog, err := extract.NewExtractor().Parse(ctx, filepath.Base(path), source)
	if err != nil {
		return fmt.Errorf("extract %s: %w", slug, err)
	}
	defer prog.Close()

	kernel, err := insp.Inspect(prog)
	if err != nil {
		return err
	}

	if len(args) == 3 {
		predicate := args[2]
		facts, err := kernel.Query(predicate)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		if len(facts) == 0 {
			fmt.Printf("No facts found for predicate '%s'\n", predicate)
			return nil
		}
		fmt.Printf("Facts for '%s':\n", predicate)
		for _, fact := range facts {
			fmt.Printf("  %s\n", fact.String())
		}
		return nil
	}

	all, err := kernel.QueryAll()
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	predicates := make([]string, 0, len(all))
	for pred, facts := range all {
		if len(facts) > 0 {
			predicates = append(predicates, pred)
		}
	}
	if len(predicates) == 0 {
		fmt.Println("No facts derived.")
		return nil
	}
	sort.Strings(predicates)

	for _, pred := range predicates {
		fmt.Printf("Facts for '%s':\n", pred)
		for _, fact := range all[pred] {
			fmt.Printf("  %s\n", fact.String())
		}
	}
	return nil
}
