package models

import "time"

// LogEntry is the immutable record of one turn, the externally visible
// unit of output. The flat JSON schema is consumed as-is by downstream
// analysis, which groups rows by speaker_model.
type LogEntry struct {
	// ExperimentID is stable across a whole simulation run.
	ExperimentID string `json:"experiment_id"`
	// TurnID is zero-based and shared by both agents of a round.
	TurnID int `json:"turn_id"`
	// Scenario is the scenario label for this run.
	Scenario string `json:"scenario"`
	// SpeakerModel is the model id of the agent that produced this turn.
	SpeakerModel string `json:"speaker_model"`
	// ResponderModel is the model id of the agent that will reply next.
	ResponderModel string `json:"responder_model"`
	// Timestamp is the UTC entry-creation time in RFC 3339 format.
	Timestamp string `json:"timestamp"`
	// LatencyMS is the completion call latency in milliseconds.
	LatencyMS float64 `json:"latency_ms"`
	// InputTokens is the prompt token count for the call.
	InputTokens int64 `json:"input_tokens"`
	// OutputTokens is the completion token count for the call.
	OutputTokens int64 `json:"output_tokens"`
	// Content is the generated text.
	Content string `json:"content"`
	// FinishReason is the provider's finish reason string.
	FinishReason string `json:"finish_reason"`
	// IsRefusal marks the refusal terminal state.
	IsRefusal bool `json:"is_refusal"`
	// SystemPromptSnapshot is the speaker's persona text frozen at
	// orchestrator construction time.
	SystemPromptSnapshot string `json:"system_prompt_snapshot"`
}

// Stamp returns t as the UTC RFC 3339 timestamp used in log entries.
func Stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
