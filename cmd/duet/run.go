package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/duetsim/duet/internal/config"
	"github.com/duetsim/duet/internal/orchestrator"
	"github.com/duetsim/duet/internal/prompt"
	"github.com/duetsim/duet/internal/state"
)

var (
	runModelA         string
	runModelB         string
	runScenario       string
	runTurns          int
	runInitialMessage string
	runExperimentID   string
	runProvider       string
	runDataDir        string
	runQuiet          bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one conversation between two models",
	Long: `Run a single simulated conversation.

Agent A opens every round and Agent B replies. Each reply is appended
to the JSONL experiment log and the run is recorded in the local run
index. Model flags accept either a friendly name from the model
registry or a raw provider slug.

The conversation ends after the requested number of rounds, or earlier
when either agent refuses (an empty reply or a content-filter stop).`,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().StringVar(&runModelA, "model-a", "Generalist", "Model for Agent A (registry name or slug)")
	runCmd.Flags().StringVar(&runModelB, "model-b", "Generalist", "Model for Agent B (registry name or slug)")
	runCmd.Flags().StringVar(&runScenario, "scenario", "Strangers", "Scenario name from the scenario registry")
	runCmd.Flags().IntVar(&runTurns, "turns", 0, "Number of rounds (0 uses the configured default)")
	runCmd.Flags().StringVar(&runInitialMessage, "initial-message", "", "Seed message delivered to Agent A")
	runCmd.Flags().StringVar(&runExperimentID, "experiment-id", "", "Experiment ID (empty generates a UUID)")
	runCmd.Flags().StringVar(&runProvider, "provider", "openrouter", "Completion provider: openrouter or anthropic")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Override the data directory")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Suppress the live transcript")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runDataDir != "" {
		cfg.Defaults.DataDir = runDataDir
	}

	turns := runTurns
	if turns <= 0 {
		turns = cfg.Defaults.Turns
	}
	initial := runInitialMessage
	if initial == "" {
		initial = cfg.Defaults.InitialMessage
	}

	persona, ok := cfg.Scenarios[runScenario]
	if !ok {
		return fmt.Errorf("unknown scenario %q (available: %v)", runScenario, cfg.ScenarioNames())
	}

	client, err := createClient(cfg, runProvider)
	if err != nil {
		return err
	}

	events, err := orchestrator.NewEventLog(cfg.EventLogPath())
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer events.Close()

	orch, err := orchestrator.New(orchestrator.Config{
		AgentA: orchestrator.AgentConfig{
			Model:           cfg.ResolveModel(runModelA),
			SystemPrompt:    prompt.DialogueOnly(persona),
			Params:          cfg.Defaults.Params(),
			PersonaSnapshot: persona,
			Client:          client,
		},
		AgentB: orchestrator.AgentConfig{
			Model:           cfg.ResolveModel(runModelB),
			SystemPrompt:    prompt.DialogueOnly(persona),
			Params:          cfg.Defaults.Params(),
			PersonaSnapshot: persona,
			Client:          client,
		},
		Scenario:     runScenario,
		ExperimentID: runExperimentID,
		Events:       events,
	})
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

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

	run := &state.Run{
		ExperimentID: orch.ExperimentID(),
		Scenario:     runScenario,
		ModelA:       orch.AgentA().Model(),
		ModelB:       orch.AgentB().Model(),
		NumTurns:     turns,
		Status:       state.RunRunning,
		LogPath:      sink.Path(),
		StartedAt:    time.Now(),
	}
	if err := db.CreateRun(run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !runQuiet {
		fmt.Printf("Experiment %s: %s vs %s (%s, %d rounds)\n\n",
			orch.ExperimentID(), run.ModelA, run.ModelB, runScenario, turns)
	}

	status, entries, streamErr := streamConversation(ctx, orch, sink, turns, initial, runQuiet)

	if err := db.FinishRun(orch.ExperimentID(), status, entries, time.Now()); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	if streamErr != nil {
		return fmt.Errorf("simulation aborted after %d entries: %w", entries, streamErr)
	}

	if !runQuiet {
		fmt.Printf("\n%s %d entries written to %s\n", color.GreenString("✓"), entries, sink.Path())
	}
	return nil
}

// streamConversation drains the orchestrator's stream into the sink,
// optionally echoing the transcript. It returns the final run status
// and the number of entries written.
func streamConversation(ctx context.Context, orch *orchestrator.Orchestrator, sink *orchestrator.Sink, turns int, initial string, quiet bool) (state.RunStatus, int, error) {
	speakerA := color.New(color.FgCyan, color.Bold)
	speakerB := color.New(color.FgMagenta, color.Bold)

	entries := 0
	stream := orch.Run(ctx, turns, initial)
	for stream.Next() {
		entry := stream.Entry()
		if err := sink.Append(entry); err != nil {
			return state.RunAborted, entries, fmt.Errorf("append log entry: %w", err)
		}
		entries++

		if quiet {
			continue
		}
		// Odd entries are A, even entries are B. Model slugs may be
		// identical, so the label comes from position.
		c := speakerA
		label := "A"
		if entries%2 == 0 {
			c = speakerB
			label = "B"
		}
		c.Printf("[%d] %s (%s): ", entry.TurnID, label, entry.SpeakerModel)
		if entry.IsRefusal {
			fmt.Printf("%s\n", color.YellowString("(refused: %s)", entry.FinishReason))
		} else {
			fmt.Printf("%s\n", entry.Content)
		}
	}

	switch stream.Status() {
	case orchestrator.StatusAborted:
		return state.RunAborted, entries, stream.Err()
	default:
		return state.RunCompleted, entries, nil
	}
}
