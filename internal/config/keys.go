package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("no API key configured")

// GetOpenRouterKey returns the OpenRouter API key. It checks in order:
// environment variable, config file.
func GetOpenRouterKey(cfg *Config) (string, error) {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		return key, nil
	}

	if cfg != nil && cfg.OpenRouter.APIKey != "" {
		key := os.ExpandEnv(cfg.OpenRouter.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

// GetAnthropicKey returns the Anthropic API key. It checks in order:
// environment variable, config file.
func GetAnthropicKey(cfg *Config) (string, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}

	if cfg != nil && cfg.Anthropic.APIKey != "" {
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

// MaskAPIKey returns a masked version of an API key for display.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 12 {
		return "***"
	}

	return key[:6] + "..." + key[len(key)-4:]
}

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetOpenRouterKeySource returns where the OpenRouter key was sourced from.
func GetOpenRouterKeySource(cfg *Config) KeySource {
	if os.Getenv("OPENROUTER_API_KEY") != "" {
		return KeySourceEnv
	}

	if cfg != nil && cfg.OpenRouter.APIKey != "" {
		key := os.ExpandEnv(cfg.OpenRouter.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return KeySourceConfig
		}
	}

	return KeySourceNone
}
