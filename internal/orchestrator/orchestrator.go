// Package orchestrator drives a scripted two-agent conversation: strict
// A→B alternation, refusal and failure termination, and an ordered stream
// of log entries.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duetsim/duet/internal/agent"
	"github.com/duetsim/duet/internal/api"
	"github.com/duetsim/duet/pkg/models"
)

// DefaultInitialMessage seeds the conversation when the caller does not
// supply an opening line.
const DefaultInitialMessage = "Hello."

// AgentConfig configures one side of the conversation.
type AgentConfig struct {
	// Model is the provider model slug.
	Model string
	// SystemPrompt is the fixed instruction text sent to the model.
	SystemPrompt string
	// Params are the sampling parameters for this agent's replies.
	Params models.SamplingParams
	// PersonaSnapshot overrides the persona text stamped onto log
	// entries. Empty uses SystemPrompt. The value is frozen at
	// orchestrator construction.
	PersonaSnapshot string
	// Client optionally injects a completion client (tests, alternate
	// providers). Nil builds the default OpenRouter client.
	Client api.CompletionClient
	// Retry optionally overrides the retry policy for this agent.
	Retry *api.RetryPolicy
}

// Config configures an Orchestrator.
type Config struct {
	// AgentA speaks first in every round.
	AgentA AgentConfig
	// AgentB replies to AgentA.
	AgentB AgentConfig
	// Scenario is the scenario label stamped onto every log entry.
	Scenario string
	// ExperimentID identifies the run. Empty generates a UUID.
	ExperimentID string
	// Events receives operational events. Nil logs to stderr only.
	Events *EventLog
}

// Orchestrator owns two agents and produces the turn sequence for one
// simulation run. It is single-use: create, run, discard.
type Orchestrator struct {
	experimentID string
	scenario     string

	agentA *agent.Agent
	agentB *agent.Agent

	// Persona snapshots are frozen here and never re-read, even if the
	// caller mutates its own prompt variables afterward.
	personaA string
	personaB string

	logs   []models.LogEntry
	events *EventLog
}

// New creates an Orchestrator and its two agents. Construction fails
// with a configuration error when an agent cannot resolve a credential.
func New(cfg Config) (*Orchestrator, error) {
	experimentID := cfg.ExperimentID
	if experimentID == "" {
		experimentID = uuid.New().String()
	}

	agentA, err := agent.New(agent.Config{
		Name:         "Agent A",
		Model:        cfg.AgentA.Model,
		SystemPrompt: cfg.AgentA.SystemPrompt,
		Params:       cfg.AgentA.Params,
		Client:       cfg.AgentA.Client,
		Retry:        cfg.AgentA.Retry,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent A: %w", err)
	}

	agentB, err := agent.New(agent.Config{
		Name:         "Agent B",
		Model:        cfg.AgentB.Model,
		SystemPrompt: cfg.AgentB.SystemPrompt,
		Params:       cfg.AgentB.Params,
		Client:       cfg.AgentB.Client,
		Retry:        cfg.AgentB.Retry,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent B: %w", err)
	}

	personaA := cfg.AgentA.PersonaSnapshot
	if personaA == "" {
		personaA = cfg.AgentA.SystemPrompt
	}
	personaB := cfg.AgentB.PersonaSnapshot
	if personaB == "" {
		personaB = cfg.AgentB.SystemPrompt
	}

	return &Orchestrator{
		experimentID: experimentID,
		scenario:     cfg.Scenario,
		agentA:       agentA,
		agentB:       agentB,
		personaA:     personaA,
		personaB:     personaB,
		events:       cfg.Events,
	}, nil
}

// ExperimentID returns the stable id for this run.
func (o *Orchestrator) ExperimentID() string { return o.experimentID }

// Scenario returns the scenario label for this run.
func (o *Orchestrator) Scenario() string { return o.scenario }

// AgentA returns the first speaker.
func (o *Orchestrator) AgentA() *agent.Agent { return o.agentA }

// AgentB returns the second speaker.
func (o *Orchestrator) AgentB() *agent.Agent { return o.agentB }

// Logs returns a copy of the entries accumulated so far.
func (o *Orchestrator) Logs() []models.LogEntry {
	out := make([]models.LogEntry, len(o.logs))
	copy(out, o.logs)
	return out
}

// Run starts a simulation of numTurns rounds and returns its pull-based
// entry stream. Each round is one Agent A turn followed by one Agent B
// turn sharing a turn id. An empty initialMessage uses
// DefaultInitialMessage. The orchestrator must not be run twice.
func (o *Orchestrator) Run(ctx context.Context, numTurns int, initialMessage string) *Stream {
	if initialMessage == "" {
		initialMessage = DefaultInitialMessage
	}

	o.eventf("starting simulation %s - scenario: %s", o.experimentID, o.scenario)

	return &Stream{
		o:           o,
		ctx:         ctx,
		numTurns:    numTurns,
		lastMessage: initialMessage,
		status:      StatusRunning,
	}
}

// newLogEntry builds the externally visible record of one turn. The
// timestamp is stamped here, at entry-creation time, in UTC.
func (o *Orchestrator) newLogEntry(turnID int, speaker, responder *agent.Agent, persona string, result models.TurnResult) models.LogEntry {
	return models.LogEntry{
		ExperimentID:         o.experimentID,
		TurnID:               turnID,
		Scenario:             o.scenario,
		SpeakerModel:         speaker.Model(),
		ResponderModel:       responder.Model(),
		Timestamp:            models.Stamp(time.Now()),
		LatencyMS:            result.LatencyMS,
		InputTokens:          result.InputTokens,
		OutputTokens:         result.OutputTokens,
		Content:              result.Content,
		FinishReason:         result.FinishReason,
		IsRefusal:            result.IsRefusal,
		SystemPromptSnapshot: persona,
	}
}

// eventf records an operational event. These are not log entries; they
// never appear in the JSONL stream.
func (o *Orchestrator) eventf(format string, args ...any) {
	o.events.Logf("[orchestrator] "+format, args...)
}
