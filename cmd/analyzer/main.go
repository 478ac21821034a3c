package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crashb/javascript-analyzer/internal/analyzer"
	"github.com/crashb/javascript-analyzer/internal/config"
	"github.com/crashb/javascript-analyzer/internal/exercises"
	"github.com/crashb/javascript-analyzer/internal/logging"
	"github.com/crashb/javascript-analyzer/internal/render"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// analyze flags
	outputDir string
	pretty    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "javascript-analyzer - automated review of exercism submissions",
	Long: `javascript-analyzer inspects JavaScript and TypeScript submissions and
issues a verdict without executing student code.

Solutions are parsed with tree-sitter, lifted into facts, and judged by a
Google Mangle (Datalog) policy. The engine is deterministic: the same
submission always yields the same verdict and the same comments.

Verdicts follow the exercism interface: approve, disapprove, or
refer_to_mentor, with comments drawn from the javascript.general family.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// analyzeCmd analyzes a single solution directory
var analyzeCmd = &cobra.Command{
	Use:   "analyze [exercise] [solution-dir]",
	Short: "Analyze one solution and write analysis.json",
	Long: `Locates the solution file for an exercise inside a directory, analyzes
it, and writes the verdict as analysis.json.

The solution file is found by slug and extension (resistor-color-duo.js,
.mjs, .cjs, or .ts). The result lands next to the solution unless
--output points elsewhere.

Example:
  analyzer analyze resistor-color-duo ./solutions/abc123
  analyzer analyze resistor-color-duo ./solutions/abc123 --pretty`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (missing files fall back to defaults)")

	analyzeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for analysis.json (default: the solution directory)")
	analyzeCmd.Flags().BoolVar(&pretty, "pretty", false, "Render the verdict as styled markdown on stdout")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runAnalyze analyzes one solution directory
func runAnalyze(cmd *cobra.Command, args []string) error {
	slug, dir := args[0], args[1]

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetAnalysisTimeout())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	runner := analyzer.NewRunner(exercises.DefaultRegistry(), logger)
	result, solutionPath, err := runner.AnalyzeDir(ctx, slug, dir)
	if err != nil {
		return err
	}

	out := outputDir
	if out == "" {
		out = cfg.Analysis.OutputDir
	}
	if out == "" {
		out = dir
	}
	written, err := analyzer.WriteResultFile(result, out)
	if err != nil {
		return err
	}

	logger.Info("analysis written",
		zap.String("solution", solutionPath),
		zap.String("output", written),
		zap.String("status", string(result.Verdict)))

	if pretty {
		doc, err := render.MustNew().RenderResult(result)
		if err != nil {
			return err
		}
		styled, err := render.Terminal(doc, 100)
		if err != nil {
			return err
		}
		fmt.Print(styled)
		return nil
	}

	fmt.Printf("Status: %s\n", result.Verdict)
	for _, c := range result.Comments {
		fmt.Printf("  - %s\n", c.ID)
	}
	return nil
}
