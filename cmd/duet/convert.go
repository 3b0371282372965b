package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/duetsim/duet/internal/analysis"
	"github.com/duetsim/duet/internal/config"
	"github.com/duetsim/duet/internal/orchestrator"
)

var convertOut string

var convertCmd = &cobra.Command{
	Use:   "convert [log.jsonl]",
	Short: "Flatten a JSONL experiment log to CSV",
	Long: `Convert a JSONL experiment log into a flat CSV.

The CSV carries the raw log columns only, with no computed metrics.
Use 'duet analyze' for the metric-augmented CSV.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertOut, "out", "", "CSV output path (default: stdout)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath := cfg.LogPath()
	if len(args) == 1 {
		logPath = args[0]
	}

	entries, err := orchestrator.ReadEntries(logPath)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	out := os.Stdout
	if convertOut != "" {
		f, err := os.Create(convertOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := analysis.WriteEntriesCSV(out, entries); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if convertOut != "" {
		fmt.Printf("%s %d entries written to %s\n", color.GreenString("✓"), len(entries), convertOut)
	}
	return nil
}
