package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/duetsim/duet/internal/analysis"
	"github.com/duetsim/duet/internal/api"
	"github.com/duetsim/duet/internal/config"
	"github.com/duetsim/duet/internal/orchestrator"
	"github.com/duetsim/duet/internal/prompt"
	"github.com/duetsim/duet/internal/state"
)

var (
	batchModels       string
	batchScenarios    string
	batchIterations   int
	batchTurns        int
	batchProvider     string
	batchDataDir      string
	batchScenarioFile string
	batchCSV          string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Sweep every model pairing across every scenario",
	Long: `Run the full experiment sweep.

Every ordered pair of models (including a model against itself) is run
under every scenario, repeated for the configured number of iterations.
All turns land in one JSONL experiment log, and each simulation is
recorded in the run index.

Models and scenarios default to the full registries. Use --models and
--scenarios with comma-separated names to restrict the sweep, and
--scenario-file to merge extra registry entries from a YAML file.

When --csv is set, the accumulated log is flattened to CSV after the
sweep finishes.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchModels, "models", "", "Comma-separated model names (default: all registered models)")
	batchCmd.Flags().StringVar(&batchScenarios, "scenarios", "", "Comma-separated scenario names (default: all registered scenarios)")
	batchCmd.Flags().IntVar(&batchIterations, "iterations", 0, "Iterations per combination (0 uses the configured default)")
	batchCmd.Flags().IntVar(&batchTurns, "turns", 0, "Rounds per simulation (0 uses the configured default)")
	batchCmd.Flags().StringVar(&batchProvider, "provider", "openrouter", "Completion provider: openrouter or anthropic")
	batchCmd.Flags().StringVar(&batchDataDir, "data-dir", "", "Override the data directory")
	batchCmd.Flags().StringVar(&batchScenarioFile, "scenario-file", "", "YAML file with extra models and scenarios")
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "Write a flattened CSV of the log after the sweep")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if batchDataDir != "" {
		cfg.Defaults.DataDir = batchDataDir
	}

	if batchScenarioFile != "" {
		sf, err := config.LoadScenarioFile(batchScenarioFile)
		if err != nil {
			return fmt.Errorf("load scenario file: %w", err)
		}
		sf.Apply(cfg)
	}

	models := cfg.ModelNames()
	if batchModels != "" {
		models = splitNames(batchModels)
	}
	scenarios := cfg.ScenarioNames()
	if batchScenarios != "" {
		scenarios = splitNames(batchScenarios)
	}
	for _, s := range scenarios {
		if _, ok := cfg.Scenarios[s]; !ok {
			return fmt.Errorf("unknown scenario %q (available: %v)", s, cfg.ScenarioNames())
		}
	}

	iterations := batchIterations
	if iterations <= 0 {
		iterations = cfg.Defaults.Iterations
	}
	turns := batchTurns
	if turns <= 0 {
		turns = cfg.Defaults.Turns
	}

	client, err := createClient(cfg, batchProvider)
	if err != nil {
		return err
	}

	events, err := orchestrator.NewEventLog(cfg.EventLogPath())
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer events.Close()

	sink, err := orchestrator.NewSink(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("open log sink: %w", err)
	}
	defer sink.Close()

	db, err := state.Open(cfg.StateDBPath())
	if err != nil {
		return fmt.Errorf("open run index: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate run index: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	total := len(models) * len(models) * len(scenarios) * iterations
	fmt.Printf("Sweep: %d models x %d scenarios x %d iterations = %d simulations\n",
		len(models), len(scenarios), iterations, total)

	done := 0
	aborted := 0
	for _, nameA := range models {
		for _, nameB := range models {
			for _, scenario := range scenarios {
				for i := 0; i < iterations; i++ {
					done++
					fmt.Printf("[%d/%d] %s vs %s, %s, iteration %d... ",
						done, total, nameA, nameB, scenario, i+1)

					status, entries, err := runOneSweep(ctx, cfg, client, sink, db, events, scenario, nameA, nameB, turns)
					if err != nil {
						if ctx.Err() != nil {
							fmt.Println(color.RedString("interrupted"))
							return fmt.Errorf("sweep interrupted after %d simulations", done-1)
						}
						aborted++
						fmt.Println(color.YellowString("aborted: %v", err))
						continue
					}
					fmt.Printf("%s (%d entries, %s)\n", color.GreenString("ok"), entries, status)
				}
			}
		}
	}

	fmt.Printf("\nSweep complete: %d simulations, %d aborted, log at %s\n", done, aborted, sink.Path())

	if batchCSV != "" {
		if err := writeLogCSV(sink.Path(), batchCSV); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Printf("CSV written to %s\n", batchCSV)
	}
	return nil
}

// runOneSweep runs a single simulation inside the sweep and records it
// in the run index.
func runOneSweep(ctx context.Context, cfg *config.Config, client api.CompletionClient, sink *orchestrator.Sink, db *state.DB, events *orchestrator.EventLog, scenario, nameA, nameB string, turns int) (state.RunStatus, int, error) {
	persona := cfg.Scenarios[scenario]

	orch, err := orchestrator.New(orchestrator.Config{
		AgentA: orchestrator.AgentConfig{
			Model:           cfg.ResolveModel(nameA),
			SystemPrompt:    prompt.DialogueOnly(persona),
			Params:          cfg.Defaults.Params(),
			PersonaSnapshot: persona,
			Client:          client,
		},
		AgentB: orchestrator.AgentConfig{
			Model:           cfg.ResolveModel(nameB),
			SystemPrompt:    prompt.DialogueOnly(persona),
			Params:          cfg.Defaults.Params(),
			PersonaSnapshot: persona,
			Client:          client,
		},
		Scenario: scenario,
		Events:   events,
	})
	if err != nil {
		return state.RunAborted, 0, err
	}

	run := &state.Run{
		ExperimentID: orch.ExperimentID(),
		Scenario:     scenario,
		ModelA:       orch.AgentA().Model(),
		ModelB:       orch.AgentB().Model(),
		NumTurns:     turns,
		Status:       state.RunRunning,
		LogPath:      sink.Path(),
		StartedAt:    time.Now(),
	}
	if err := db.CreateRun(run); err != nil {
		return state.RunAborted, 0, err
	}

	status, entries, streamErr := streamConversation(ctx, orch, sink, turns, cfg.Defaults.InitialMessage, true)
	if err := db.FinishRun(orch.ExperimentID(), status, entries, time.Now()); err != nil {
		return status, entries, err
	}
	return status, entries, streamErr
}

func splitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// writeLogCSV flattens a JSONL experiment log to CSV.
func writeLogCSV(logPath, csvPath string) error {
	entries, err := orchestrator.ReadEntries(logPath)
	if err != nil {
		return err
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return analysis.WriteEntriesCSV(f, entries)
}
