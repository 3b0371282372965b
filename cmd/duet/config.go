package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/duetsim/duet/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show effective configuration",
	Long: `Display the effective duet configuration.

Without arguments, displays all configuration values. With one argument,
displays just that key.

Configuration is layered: built-in defaults, then the user config at
~/.config/duet/config.yaml, then a project-local .duet.yaml, then
environment variables. API keys are always masked.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 1 {
			displayConfigKey(cfg, args[0])
			return
		}
		displayAllConfig(cfg)
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	key, _ := config.GetOpenRouterKey(cfg)
	fmt.Printf("openrouter.api_key: %s (%s)\n", config.MaskAPIKey(key), config.GetOpenRouterKeySource(cfg))
	if cfg.OpenRouter.BaseURL != "" {
		fmt.Printf("openrouter.base_url: %s\n", cfg.OpenRouter.BaseURL)
	}
	akey, _ := config.GetAnthropicKey(cfg)
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(akey))
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("defaults.turns: %d\n", cfg.Defaults.Turns)
	fmt.Printf("defaults.iterations: %d\n", cfg.Defaults.Iterations)
	fmt.Printf("defaults.data_dir: %s\n", cfg.Defaults.DataDir)
	fmt.Printf("defaults.initial_message: %s\n", cfg.Defaults.InitialMessage)
	fmt.Printf("defaults.temperature: %g\n", cfg.Defaults.Temperature)
	fmt.Printf("defaults.max_tokens: %d\n", cfg.Defaults.MaxTokens)
	fmt.Printf("models: %s\n", strings.Join(cfg.ModelNames(), ", "))
	fmt.Printf("scenarios: %s\n", strings.Join(cfg.ScenarioNames(), ", "))
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// getConfigValue resolves a dotted key to its display value.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "openrouter.api_key":
		k, _ := config.GetOpenRouterKey(cfg)
		return config.MaskAPIKey(k), nil
	case "openrouter.base_url":
		return cfg.OpenRouter.BaseURL, nil
	case "anthropic.api_key":
		k, _ := config.GetAnthropicKey(cfg)
		return config.MaskAPIKey(k), nil
	case "anthropic.use_aws_bedrock":
		return fmt.Sprintf("%t", cfg.Anthropic.UseAWSBedrock), nil
	case "defaults.turns":
		return fmt.Sprintf("%d", cfg.Defaults.Turns), nil
	case "defaults.iterations":
		return fmt.Sprintf("%d", cfg.Defaults.Iterations), nil
	case "defaults.data_dir":
		return cfg.Defaults.DataDir, nil
	case "defaults.initial_message":
		return cfg.Defaults.InitialMessage, nil
	case "defaults.temperature":
		return fmt.Sprintf("%g", cfg.Defaults.Temperature), nil
	case "defaults.max_tokens":
		return fmt.Sprintf("%d", cfg.Defaults.MaxTokens), nil
	case "models":
		return strings.Join(cfg.ModelNames(), ", "), nil
	case "scenarios":
		return strings.Join(cfg.ScenarioNames(), ", "), nil
	default:
		if slug, ok := cfg.Models[key]; ok {
			return slug, nil
		}
		if prompt, ok := cfg.Scenarios[key]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}
