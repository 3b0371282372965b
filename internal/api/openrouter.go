package api

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/duetsim/duet/pkg/models"
)

// DefaultOpenRouterBaseURL is the OpenRouter chat completions endpoint.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient is a CompletionClient backed by OpenRouter's
// OpenAI-compatible chat completions API.
type OpenRouterClient struct {
	client  openai.Client
	tracker *TokenTracker
}

// OpenRouterConfig contains configuration for creating an OpenRouterClient.
type OpenRouterConfig struct {
	// APIKey is the OpenRouter API key. If empty, uses the
	// OPENROUTER_API_KEY environment variable.
	APIKey string
	// BaseURL overrides the OpenRouter endpoint, mainly for tests.
	BaseURL string
}

// NewOpenRouterClient creates a new OpenRouter-backed completion client.
// It fails when no API key is resolvable.
func NewOpenRouterClient(cfg OpenRouterConfig) (*OpenRouterClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}

	return &OpenRouterClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		tracker: NewTokenTracker(),
	}, nil
}

// Tracker returns the token tracker for this client.
func (c *OpenRouterClient) Tracker() *TokenTracker {
	return c.tracker
}

// Complete issues one chat completion request. Latency is measured
// strictly around the request/response boundary; absent usage metadata
// yields zero token counts.
func (c *OpenRouterClient) Complete(ctx context.Context, model string, history []models.Message, params models.SamplingParams) (models.TurnResult, error) {
	if err := validateHistory(history); err != nil {
		return models.TurnResult{}, err
	}

	body := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(history),
	}
	if params.Temperature != nil {
		body.Temperature = openai.Float(*params.Temperature)
	}
	if params.MaxTokens != nil {
		body.MaxTokens = openai.Int(*params.MaxTokens)
	}

	// Provider-specific passthrough keys ride along in the request body.
	var opts []option.RequestOption
	for key, value := range params.Extra {
		opts = append(opts, option.WithJSONSet(key, value))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, body, opts...)
	latency := time.Since(start)
	if err != nil {
		return models.TurnResult{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.TurnResult{}, fmt.Errorf("chat completion: response has no choices")
	}

	choice := resp.Choices[0]
	content := choice.Message.Content
	finishReason := string(choice.FinishReason)

	c.tracker.Add(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return models.TurnResult{
		Content:      content,
		LatencyMS:    float64(latency) / float64(time.Millisecond),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		FinishReason: finishReason,
		IsRefusal:    models.Refusal(content, finishReason),
	}, nil
}

// toOpenAIMessages converts a duet history to the wire message format.
func toOpenAIMessages(history []models.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case models.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case models.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
