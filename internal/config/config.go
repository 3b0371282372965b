// Package config handles configuration loading and management for duet.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"

	"github.com/duetsim/duet/pkg/models"
)

// Config holds all configuration for duet.
type Config struct {
	OpenRouter OpenRouterConfig  `mapstructure:"openrouter"`
	Anthropic  AnthropicConfig   `mapstructure:"anthropic"`
	Defaults   DefaultsConfig    `mapstructure:"defaults"`
	Models     map[string]string `mapstructure:"models"`
	Scenarios  map[string]string `mapstructure:"scenarios"`
}

// OpenRouterConfig holds OpenRouter API settings.
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings for the direct provider.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// DefaultsConfig holds default simulation parameters.
type DefaultsConfig struct {
	// Turns is the number of rounds per conversation; total messages on
	// a clean run is twice this.
	Turns int `mapstructure:"turns"`
	// Iterations is how many times batch mode repeats each
	// model-pair/scenario combination.
	Iterations int `mapstructure:"iterations"`
	// DataDir is where JSONL logs, event logs, and the run index live.
	DataDir string `mapstructure:"data_dir"`
	// InitialMessage seeds each conversation.
	InitialMessage string `mapstructure:"initial_message"`
	// Temperature is the default sampling temperature for both agents.
	Temperature float64 `mapstructure:"temperature"`
	// MaxTokens caps generated reply length.
	MaxTokens int64 `mapstructure:"max_tokens"`
}

// Params returns the defaults as sampling parameters.
func (d DefaultsConfig) Params() models.SamplingParams {
	return models.SamplingParams{
		Temperature: models.Float64(d.Temperature),
		MaxTokens:   models.Int64(d.MaxTokens),
	}
}

// LogPath returns the JSONL log file path under the data directory.
func (c *Config) LogPath() string {
	return filepath.Join(c.Defaults.DataDir, "experiment_log.jsonl")
}

// EventLogPath returns the operational event log path.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.Defaults.DataDir, "events.log")
}

// StateDBPath returns the run index database path.
func (c *Config) StateDBPath() string {
	return filepath.Join(c.Defaults.DataDir, "runs.db")
}

// ModelNames returns the friendly model names in sorted order.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScenarioNames returns the scenario labels in sorted order.
func (c *Config) ScenarioNames() []string {
	names := make([]string, 0, len(c.Scenarios))
	for name := range c.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveModel maps a friendly model name to its provider slug. An
// unknown name is passed through as a literal slug so users can point at
// models that are not in the registry.
func (c *Config) ResolveModel(name string) string {
	if slug, ok := c.Models[name]; ok {
		return slug
	}
	return name
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (OPENROUTER_API_KEY, ANTHROPIC_API_KEY)
// 2. Project config (.duet.yaml in current directory or parent)
// 3. User config (~/.config/duet/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.OpenRouter.APIKey = expandEnv(cfg.OpenRouter.APIKey)
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.OpenRouter.APIKey = expandEnv(cfg.OpenRouter.APIKey)
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values, mirroring the built-in model
// and scenario registries.
func setDefaults(v *viper.Viper) {
	v.SetDefault("openrouter.api_key", "")
	v.SetDefault("openrouter.base_url", "")
	v.SetDefault("anthropic.api_key", "")

	v.SetDefault("defaults.turns", 10)
	v.SetDefault("defaults.iterations", 3)
	v.SetDefault("defaults.data_dir", "data")
	v.SetDefault("defaults.initial_message", "Hello.")
	v.SetDefault("defaults.temperature", 1.0)
	v.SetDefault("defaults.max_tokens", 1000)

	v.SetDefault("models", map[string]string{
		"Generalist":  "meta-llama/llama-3-70b-instruct",
		"Specialized": "gryphe/mythomax-l2-13b",
	})

	v.SetDefault("scenarios", map[string]string{
		"Strangers": "You do not know the other person. You are meeting for the first time. " +
			"Engage in conversation naturally, getting to know them.",
		"Early Dating": "You have just started dating. There is mutual attraction. " +
			"Flirt and deepen your connection.",
		"Committed": "You are in a long-term, committed relationship. " +
			"Express your deep bond and familiarity with each other.",
	})
}

// getUserConfigDir returns the XDG config directory for duet.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "duet")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "duet")
	}
	return filepath.Join(home, ".config", "duet")
}

// findProjectConfig searches for .duet.yaml in the current directory and
// parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".duet.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with built-in default values.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Turns:          10,
			Iterations:     3,
			DataDir:        "data",
			InitialMessage: "Hello.",
			Temperature:    1.0,
			MaxTokens:      1000,
		},
		Models: map[string]string{
			"Generalist":  "meta-llama/llama-3-70b-instruct",
			"Specialized": "gryphe/mythomax-l2-13b",
		},
		Scenarios: map[string]string{
			"Strangers": "You do not know the other person. You are meeting for the first time. " +
				"Engage in conversation naturally, getting to know them.",
			"Early Dating": "You have just started dating. There is mutual attraction. " +
				"Flirt and deepen your connection.",
			"Committed": "You are in a long-term, committed relationship. " +
				"Express your deep bond and familiarity with each other.",
		},
	}
}
