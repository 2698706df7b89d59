// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/conflict-monitor/internal/archive"
	"github.com/pdiddy/conflict-monitor/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past validation runs from the archive",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("runs", 0, "number of runs to show (default 10)")
	historyCmd.Flags().String("archive-dir", "archive", "directory holding the run-history database")
	historyCmd.Flags().Bool("snapshots", false, "also list per-snapshot verdicts for each run")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("runs")
	archiveDir, _ := cmd.Flags().GetString("archive-dir")
	showSnapshots, _ := cmd.Flags().GetBool("snapshots")

	store, err := archive.Open(types.ArchiveConfig{ArchiveDir: archiveDir})
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(n)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-20s  %-9s  %-6s  %-6s\n",
		"Run", "Started", "Processed", "Passed", "Failed")
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-6d  %-20s  %-9d  %-6d  %-6d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Processed, r.Passed, r.Failed)

		if !showSnapshots {
			continue
		}
		snaps, err := store.RunSnapshots(r.ID)
		if err != nil {
			return err
		}
		for _, s := range snaps {
			fmt.Fprintf(os.Stdout, "        %-24s  %-11s  %d errors, %d warnings\n",
				s.Filename, s.Verdict, s.ErrorCount, s.WarningCount)
		}
	}
	return nil
}
