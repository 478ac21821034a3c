package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/crashb/javascript-analyzer/cmd/analyzer/ui"
	"github.com/crashb/javascript-analyzer/internal/render"
	"github.com/crashb/javascript-analyzer/internal/store"
)

var (
	browseExercise string
	browseLimit    int
)

// browseCmd opens the interactive store browser
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored analyses in an interactive TUI",
	Long: `Opens an interactive terminal UI over the local analysis store.

The left pane lists stored analyses; the right pane shows the rendered
comment markdown for the selected one. Use / to filter, tab to switch
focus, and q to quit.`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseExercise, "exercise", "", "Filter to one exercise slug")
	browseCmd.Flags().IntVar(&browseLimit, "limit", 200, "Maximum analyses to load")
}

// runBrowse loads store records and starts the TUI
func runBrowse(cmd *cobra.Command, args []string) error {
	st, err := store.NewLocalStore(cfg.Store.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	var records []store.Record
	if browseExercise != "" {
		records, err = st.ListByExercise(browseExercise, browseLimit)
	} else {
		records, err = st.Recent(browseLimit)
	}
	if err != nil {
		return err
	}

	model := ui.NewBrowseModel(records, render.MustNew())
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("browse UI failed: %w", err)
	}
	return nil
}
