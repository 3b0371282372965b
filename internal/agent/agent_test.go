package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duetsim/duet/internal/api"
	"github.com/duetsim/duet/pkg/models"
)

// scriptedClient replays a fixed sequence of results and errors.
type scriptedClient struct {
	results []models.TurnResult
	errs    []error
	calls   int

	lastHistory []models.Message
	lastParams  models.SamplingParams
}

func (c *scriptedClient) Complete(_ context.Context, _ string, history []models.Message, params models.SamplingParams) (models.TurnResult, error) {
	i := c.calls
	c.calls++
	c.lastHistory = append([]models.Message(nil), history...)
	c.lastParams = params
	if i < len(c.errs) && c.errs[i] != nil {
		return models.TurnResult{}, c.errs[i]
	}
	if i < len(c.results) {
		return c.results[i], nil
	}
	return models.TurnResult{Content: "ok", FinishReason: "stop"}, nil
}

func reply(content string) models.TurnResult {
	return models.TurnResult{
		Content:      content,
		FinishReason: "stop",
		IsRefusal:    models.Refusal(content, "stop"),
	}
}

func noSleepPolicy() *api.RetryPolicy {
	p := api.DefaultRetryPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return &p
}

func newTestAgent(t *testing.T, client api.CompletionClient) *Agent {
	t.Helper()
	a, err := New(Config{
		Name:         "Agent A",
		Model:        "test/model-a",
		SystemPrompt: "You are meeting a stranger.",
		Client:       client,
		Retry:        noSleepPolicy(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New(Config{Name: "Agent A", Client: &scriptedClient{}}); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestNewRequiresCredentialWithoutClient(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	_, err := New(Config{Name: "Agent A", Model: "m", SystemPrompt: "p"})
	if err == nil {
		t.Error("expected configuration error without credential or injected client")
	}
}

func TestReplyHistoryGrowth(t *testing.T) {
	client := &scriptedClient{results: []models.TurnResult{reply("first"), reply("second")}}
	a := newTestAgent(t, client)

	if got := len(a.History()); got != 1 {
		t.Fatalf("expected history length 1 (system only), got %d", got)
	}

	for k, inbound := range []string{"Hello.", "How are you?"} {
		result, err := a.Reply(context.Background(), inbound)
		if err != nil {
			t.Fatalf("Reply %d: %v", k, err)
		}
		if result.IsRefusal {
			t.Fatalf("Reply %d: unexpected refusal", k)
		}
		// 1 system + 2 per successful exchange.
		want := 1 + 2*(k+1)
		if got := len(a.History()); got != want {
			t.Errorf("after exchange %d: history length %d, want %d", k+1, got, want)
		}
	}

	history := a.History()
	if history[0].Role != models.RoleSystem {
		t.Errorf("history[0] role = %q, want system", history[0].Role)
	}
	if history[1] != models.UserMessage("Hello.") {
		t.Errorf("history[1] = %+v, want user 'Hello.'", history[1])
	}
	if history[2] != models.AssistantMessage("first") {
		t.Errorf("history[2] = %+v, want assistant 'first'", history[2])
	}
}

func TestReplyRefusalAppendsOnlyUserMessage(t *testing.T) {
	client := &scriptedClient{results: []models.TurnResult{{Content: "", FinishReason: "content_filter", IsRefusal: true}}}
	a := newTestAgent(t, client)

	result, err := a.Reply(context.Background(), "Say something forbidden.")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if !result.IsRefusal {
		t.Error("expected refusal result")
	}

	history := a.History()
	if len(history) != 2 {
		t.Fatalf("expected history length 2 (system + user), got %d", len(history))
	}
	if history[1].Role != models.RoleUser {
		t.Errorf("history[1] role = %q, want user", history[1].Role)
	}
}

func TestReplyRetriesThenSucceeds(t *testing.T) {
	client := &scriptedClient{
		errs:    []error{errors.New("boom"), errors.New("boom again"), nil},
		results: []models.TurnResult{{}, {}, reply("third time lucky")},
	}
	a := newTestAgent(t, client)

	result, err := a.Reply(context.Background(), "Hello.")
	if err != nil {
		t.Fatalf("expected success after two transient failures, got %v", err)
	}
	if result.Content != "third time lucky" {
		t.Errorf("unexpected content: %q", result.Content)
	}
	if client.calls != 3 {
		t.Errorf("expected 3 completion calls, got %d", client.calls)
	}
}

func TestReplyExhaustedRetriesKeepsUserMessage(t *testing.T) {
	failure := errors.New("endpoint down")
	client := &scriptedClient{errs: []error{failure, failure, failure}}
	a := newTestAgent(t, client)

	_, err := a.Reply(context.Background(), "Hello.")
	if !errors.Is(err, failure) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}

	// The appended user message is not rolled back on failure.
	history := a.History()
	if len(history) != 2 {
		t.Fatalf("expected history length 2 after failed turn, got %d", len(history))
	}
	if history[1] != models.UserMessage("Hello.") {
		t.Errorf("history[1] = %+v, want the inbound user message", history[1])
	}
}

func TestReplyPassesMergedParams(t *testing.T) {
	client := &scriptedClient{results: []models.TurnResult{reply("ok")}}
	a, err := New(Config{
		Name:         "Agent B",
		Model:        "test/model-b",
		SystemPrompt: "p",
		Params: models.SamplingParams{
			Temperature: models.Float64(1.0),
			MaxTokens:   models.Int64(500),
		},
		Client: client,
		Retry:  noSleepPolicy(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := a.Reply(context.Background(), "hi", models.SamplingParams{Temperature: models.Float64(0.3)}); err != nil {
		t.Fatalf("Reply: %v", err)
	}

	if *client.lastParams.Temperature != 0.3 {
		t.Errorf("expected override temperature 0.3, got %v", *client.lastParams.Temperature)
	}
	if *client.lastParams.MaxTokens != 500 {
		t.Errorf("expected default max tokens 500, got %v", *client.lastParams.MaxTokens)
	}
	if client.lastHistory[0].Role != models.RoleSystem {
		t.Errorf("expected system message first in call history")
	}
}
