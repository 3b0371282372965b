package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/duetsim/duet/pkg/models"
)

// completionServer returns an httptest server that records the request
// body and responds with the given JSON payload.
func completionServer(t *testing.T, payload string, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(payload))
	}))
}

func testHistory() []models.Message {
	return []models.Message{
		models.SystemMessage("You are a friendly stranger."),
		models.UserMessage("Hello."),
	}
}

func TestOpenRouterComplete(t *testing.T) {
	var req map[string]any
	srv := completionServer(t, `{
		"id": "gen-1",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi! Nice to meet you."}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 21, "completion_tokens": 8}
	}`, &req)
	defer srv.Close()

	client, err := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenRouterClient: %v", err)
	}

	result, err := client.Complete(context.Background(), "meta-llama/llama-3-70b-instruct", testHistory(), models.SamplingParams{
		Temperature: models.Float64(0.8),
		MaxTokens:   models.Int64(1000),
		Extra:       map[string]any{"top_p": 0.9},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if result.Content != "Hi! Nice to meet you." {
		t.Errorf("unexpected content: %q", result.Content)
	}
	if result.FinishReason != "stop" {
		t.Errorf("unexpected finish reason: %q", result.FinishReason)
	}
	if result.IsRefusal {
		t.Error("expected non-refusal result")
	}
	if result.InputTokens != 21 || result.OutputTokens != 8 {
		t.Errorf("unexpected token counts: %d/%d", result.InputTokens, result.OutputTokens)
	}
	if result.LatencyMS <= 0 {
		t.Errorf("expected positive latency, got %v", result.LatencyMS)
	}

	if req["model"] != "meta-llama/llama-3-70b-instruct" {
		t.Errorf("unexpected model in request: %v", req["model"])
	}
	if req["temperature"] != 0.8 {
		t.Errorf("unexpected temperature in request: %v", req["temperature"])
	}
	if req["top_p"] != 0.9 {
		t.Errorf("expected passthrough top_p in request body, got %v", req["top_p"])
	}
	msgs, ok := req["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("expected 2 messages in request, got %v", req["messages"])
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("expected leading system message, got role %v", first["role"])
	}

	in, out := client.Tracker().Total()
	if in != 21 || out != 8 {
		t.Errorf("tracker totals = %d/%d, want 21/8", in, out)
	}
}

func TestOpenRouterCompleteMissingUsage(t *testing.T) {
	srv := completionServer(t, `{
		"id": "gen-2",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]
	}`, nil)
	defer srv.Close()

	client, err := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenRouterClient: %v", err)
	}

	result, err := client.Complete(context.Background(), "test-model", testHistory(), models.SamplingParams{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result.InputTokens != 0 || result.OutputTokens != 0 {
		t.Errorf("expected zero token counts without usage, got %d/%d", result.InputTokens, result.OutputTokens)
	}
}

func TestOpenRouterCompleteContentFilter(t *testing.T) {
	srv := completionServer(t, `{
		"id": "gen-3",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "I cannot"}, "finish_reason": "content_filter"}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 2}
	}`, nil)
	defer srv.Close()

	client, err := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenRouterClient: %v", err)
	}

	result, err := client.Complete(context.Background(), "test-model", testHistory(), models.SamplingParams{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !result.IsRefusal {
		t.Error("expected content_filter finish reason to count as refusal")
	}
}

func TestOpenRouterCompleteInvalidHistory(t *testing.T) {
	client, err := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewOpenRouterClient: %v", err)
	}

	if _, err := client.Complete(context.Background(), "m", nil, models.SamplingParams{}); err == nil {
		t.Error("expected error for empty history")
	}

	badStart := []models.Message{models.UserMessage("hi")}
	if _, err := client.Complete(context.Background(), "m", badStart, models.SamplingParams{}); err == nil {
		t.Error("expected error for history not starting with a system message")
	}
}

func TestNewOpenRouterClientRequiresKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	if _, err := NewOpenRouterClient(OpenRouterConfig{}); err == nil {
		t.Error("expected configuration error without an API key")
	}
}
