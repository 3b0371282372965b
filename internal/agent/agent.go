// Package agent implements one role of a two-agent conversation: a model
// id, a fixed system prompt, and an append-only message history.
package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/duetsim/duet/internal/api"
	"github.com/duetsim/duet/pkg/models"
)

// Agent holds one side of a simulated dialogue. The system prompt is
// fixed at construction and is always history[0]; only Reply mutates the
// history, and entries are never removed.
type Agent struct {
	name    string
	model   string
	history []models.Message
	params  models.SamplingParams
	client  api.CompletionClient
	retry   api.RetryPolicy
}

// Config contains configuration for creating an Agent.
type Config struct {
	// Name is a display name used in operational logs ("Agent A").
	Name string
	// Model is the provider model slug.
	Model string
	// SystemPrompt is the fixed instruction text for this role.
	SystemPrompt string
	// Params are the default sampling parameters for every reply.
	Params models.SamplingParams
	// Client is the completion client to use. When nil, an OpenRouter
	// client is constructed, which requires a resolvable API key.
	Client api.CompletionClient
	// Retry overrides the default retry policy. Nil uses the default.
	Retry *api.RetryPolicy
}

// New creates an Agent. When no client is injected, construction fails
// with a configuration error if no API credential is resolvable.
func New(cfg Config) (*Agent, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("agent %q: model is required", cfg.Name)
	}

	client := cfg.Client
	if client == nil {
		or, err := api.NewOpenRouterClient(api.OpenRouterConfig{})
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", cfg.Name, err)
		}
		client = or
	}

	retry := api.DefaultRetryPolicy()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	return &Agent{
		name:    cfg.Name,
		model:   cfg.Model,
		history: []models.Message{models.SystemMessage(cfg.SystemPrompt)},
		params:  cfg.Params,
		client:  client,
		retry:   retry,
	}, nil
}

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Model returns the agent's model slug.
func (a *Agent) Model() string { return a.model }

// SystemPrompt returns the fixed system prompt text.
func (a *Agent) SystemPrompt() string { return a.history[0].Content }

// History returns a copy of the conversation history.
func (a *Agent) History() []models.Message {
	out := make([]models.Message, len(a.history))
	copy(out, a.history)
	return out
}

// Reply appends inbound as a user message, requests a completion through
// the retry policy, and appends the generated text as an assistant
// message when it is non-empty. On refusal only the user message remains;
// history growth is asymmetric there. On a failed call (retries
// exhausted) the appended user message is kept and the error propagates.
func (a *Agent) Reply(ctx context.Context, inbound string, overrides ...models.SamplingParams) (models.TurnResult, error) {
	params := a.params
	for _, o := range overrides {
		params = params.Merge(o)
	}

	a.history = append(a.history, models.UserMessage(inbound))

	var result models.TurnResult
	err := a.retry.Do(ctx, func() error {
		var callErr error
		result, callErr = a.client.Complete(ctx, a.model, a.history, params)
		return callErr
	})
	if err != nil {
		log.Printf("[agent] %s: completion failed after retries: %v", a.name, err)
		return models.TurnResult{}, err
	}

	if result.Content != "" {
		a.history = append(a.history, models.AssistantMessage(result.Content))
	}

	return result, nil
}
