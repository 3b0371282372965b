package main

import (
	"fmt"

	"github.com/duetsim/duet/internal/api"
	"github.com/duetsim/duet/internal/config"
)

// createClient builds the completion client for the requested provider.
// OpenRouter is the default; "anthropic" routes through the Anthropic
// API directly, or through AWS Bedrock when configured.
func createClient(cfg *config.Config, provider string) (api.CompletionClient, error) {
	switch provider {
	case "", "openrouter":
		key, err := config.GetOpenRouterKey(cfg)
		if err != nil {
			return nil, fmt.Errorf("openrouter: %w", err)
		}
		return api.NewOpenRouterClient(api.OpenRouterConfig{
			APIKey:  key,
			BaseURL: cfg.OpenRouter.BaseURL,
		})
	case "anthropic":
		acfg := api.AnthropicConfig{
			UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
			AWSRegion:     cfg.Anthropic.AWSRegion,
			AWSProfile:    cfg.Anthropic.AWSProfile,
		}
		if !acfg.UseAWSBedrock {
			key, err := config.GetAnthropicKey(cfg)
			if err != nil {
				return nil, fmt.Errorf("anthropic: %w", err)
			}
			acfg.APIKey = key
		}
		return api.NewAnthropicClient(acfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (want openrouter or anthropic)", provider)
	}
}
