package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/duetsim/duet/internal/config"
	"github.com/duetsim/duet/internal/state"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent runs from the run index",
	Long: `Display recent simulation runs.

Shows each run's experiment ID, model pairing, scenario, entry count,
final status, and when it started.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Maximum number of runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.StateDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No runs recorded. Run 'duet run' to start a simulation.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open run index: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate run index: %w", err)
	}

	runs, err := db.ListRuns(nil, statusLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded. Run 'duet run' to start a simulation.")
		return nil
	}

	for _, r := range runs {
		statusStr := string(r.Status)
		switch r.Status {
		case state.RunCompleted:
			statusStr = color.GreenString(statusStr)
		case state.RunAborted:
			statusStr = color.RedString(statusStr)
		case state.RunRunning:
			statusStr = color.YellowString(statusStr)
		}

		fmt.Printf("%s  %s\n", color.New(color.Bold).Sprint(shortID(r.ExperimentID)), statusStr)
		fmt.Printf("  %s vs %s\n", r.ModelA, r.ModelB)
		fmt.Printf("  scenario: %s, %d/%d rounds logged\n", r.Scenario, r.Entries/2, r.NumTurns)
		fmt.Printf("  started %s", r.StartedAt.Local().Format(time.RFC822))
		if r.FinishedAt != nil {
			fmt.Printf(", took %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
		}
		fmt.Printf("\n\n")
	}
	return nil
}

// shortID truncates a UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
