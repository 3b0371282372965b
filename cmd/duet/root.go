package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "duet",
	Short: "Two-agent LLM conversation simulator",
	Long: `Duet runs scripted conversations between two LLM personas and records
every turn as structured JSONL for downstream analysis.

Each simulation pairs two models under a shared scenario. Agent A opens
every round, Agent B replies, and both replies are logged with latency,
token usage, and refusal telemetry. Batch sweeps cross every model pair
with every scenario, and the analyze command turns the resulting logs
into per-turn linguistic metrics.

Core capabilities:
- Strict turn alternation with append-only conversation history
- Per-turn JSONL logging with persona snapshots
- Model x model x scenario batch sweeps
- Part-of-speech and lexicon analysis of transcripts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
