// Package api provides completion clients for duet agents: an
// OpenRouter-backed client speaking the OpenAI chat completions protocol,
// and an Anthropic client supporting both the direct API and AWS Bedrock.
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/duetsim/duet/pkg/models"
)

// CompletionClient issues a single chat completion request and reports
// the outcome as a TurnResult. Implementations perform exactly one
// outbound request per call; retry policy wraps the client, it does not
// live inside it.
type CompletionClient interface {
	Complete(ctx context.Context, model string, history []models.Message, params models.SamplingParams) (models.TurnResult, error)
}

// ErrEmptyHistory is returned when a completion is requested with no messages.
var ErrEmptyHistory = errors.New("message history is empty")

// validateHistory enforces the completion call contract: a non-empty
// history that begins with a system message.
func validateHistory(history []models.Message) error {
	if len(history) == 0 {
		return ErrEmptyHistory
	}
	if history[0].Role != models.RoleSystem {
		return fmt.Errorf("history must begin with a system message, got %q", history[0].Role)
	}
	return nil
}

// TokenTracker aggregates token usage across completion calls.
type TokenTracker struct {
	mu        sync.Mutex
	inputTok  int64
	outputTok int64
	calls     int
}

// NewTokenTracker creates a new token tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{}
}

// Add records token usage from a completion call.
func (t *TokenTracker) Add(input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok += input
	t.outputTok += output
	t.calls++
}

// Total returns the total input and output tokens tracked.
func (t *TokenTracker) Total() (input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inputTok, t.outputTok
}

// Calls returns the number of completion calls recorded.
func (t *TokenTracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Reset clears all tracked usage.
func (t *TokenTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok = 0
	t.outputTok = 0
	t.calls = 0
}
