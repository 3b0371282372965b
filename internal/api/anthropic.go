package api

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/duetsim/duet/pkg/models"
)

// defaultAnthropicMaxTokens is used when no max token cap is configured;
// the Anthropic API requires an explicit cap on every request.
const defaultAnthropicMaxTokens = 1024

// AnthropicClient is a CompletionClient backed by the Anthropic Messages
// API, reached either directly or through AWS Bedrock.
type AnthropicClient struct {
	client  anthropic.Client
	tracker *TokenTracker
}

// AnthropicConfig contains configuration for creating an AnthropicClient.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. If empty, uses the
	// ANTHROPIC_API_KEY environment variable.
	APIKey string
	// UseAWSBedrock routes requests through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
}

// NewAnthropicClient creates a new Anthropic-backed completion client.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &AnthropicClient{
		client:  anthropic.NewClient(opts...),
		tracker: NewTokenTracker(),
	}, nil
}

// Tracker returns the token tracker for this client.
func (c *AnthropicClient) Tracker() *TokenTracker {
	return c.tracker
}

// Complete issues one Messages API request. The leading system message of
// the history becomes the request's system prompt; the rest map to
// alternating message turns. The stop reason is reported verbatim as the
// finish reason.
func (c *AnthropicClient) Complete(ctx context.Context, model string, history []models.Message, params models.SamplingParams) (models.TurnResult, error) {
	if err := validateHistory(history); err != nil {
		return models.TurnResult{}, err
	}

	maxTokens := int64(defaultAnthropicMaxTokens)
	if params.MaxTokens != nil {
		maxTokens = *params.MaxTokens
	}

	body := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: history[0].Content},
		},
		Messages: toAnthropicMessages(history[1:]),
	}
	if params.Temperature != nil {
		body.Temperature = anthropic.Float(*params.Temperature)
	}

	var opts []option.RequestOption
	for key, value := range params.Extra {
		opts = append(opts, option.WithJSONSet(key, value))
	}

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, body, opts...)
	latency := time.Since(start)
	if err != nil {
		return models.TurnResult{}, fmt.Errorf("messages api: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += variant.Text
		}
	}
	finishReason := string(resp.StopReason)

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	return models.TurnResult{
		Content:      content,
		LatencyMS:    float64(latency) / float64(time.Millisecond),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		FinishReason: finishReason,
		IsRefusal:    models.Refusal(content, finishReason),
	}, nil
}

// toAnthropicMessages converts user/assistant turns to the wire format.
func toAnthropicMessages(history []models.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		if m.Role == models.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}
