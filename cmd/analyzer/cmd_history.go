package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/crashb/javascript-analyzer/internal/store"
)

var (
	historyExercise string
	historyLimit    int
	historyStats    bool
)

// historyCmd inspects the local analysis store
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored analyses",
	Long: `Lists analyses from the local store.

Shows recent analyses by default; filter to one exercise with --exercise
or print aggregate counts per status with --stats.

Example:
  analyzer history --limit 20
  analyzer history --exercise resistor-color-duo
  analyzer history --stats`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyExercise, "exercise", "", "Filter to one exercise slug")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum rows to list")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "Print aggregate counts instead of rows")
}

// runHistory lists or aggregates stored analyses
func runHistory(cmd *cobra.Command, args []string) error {
	st, err := store.NewLocalStore(cfg.Store.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if historyStats {
		return printStats(st)
	}

	var records []store.Record
	if historyExercise != "" {
		records, err = st.ListByExercise(historyExercise, historyLimit)
	} else {
		records, err = st.Recent(historyLimit)
	}
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No stored analyses.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Exercise", "Status", "Comments", "Updated"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	for _, rec := range records {
		table.Append([]string{
			shortID(rec.ID),
			rec.Exercise,
			rec.Status,
			fmt.Sprintf("%d", len(rec.Comments)),
			rec.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
	return nil
}

// printStats prints per-status counts and the total.
func printStats(st *store.LocalStore) error {
	counts, err := st.CountByStatus()
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Println("No stored analyses.")
		return nil
	}

	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	var total int64
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Status", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	for _, status := range statuses {
		table.Append([]string{status, fmt.Sprintf("%d", counts[status])})
		total += counts[status]
	}
	table.SetFooter([]string{"Total", fmt.Sprintf("%d", total)})
	table.Render()
	return nil
}

// shortID truncates a record id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
