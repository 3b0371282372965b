package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioFile is a standalone YAML file defining extra models and
// scenarios for a sweep, merged over the built-in registries.
type ScenarioFile struct {
	// Models maps friendly names to provider slugs.
	Models map[string]string `yaml:"models"`
	// Scenarios maps scenario labels to system prompt text.
	Scenarios map[string]string `yaml:"scenarios"`
}

// LoadScenarioFile reads a scenario definition file.
func LoadScenarioFile(path string) (*ScenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var sf ScenarioFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse scenario file %s: %w", path, err)
	}
	return &sf, nil
}

// Apply merges the file's registries into cfg, file entries winning.
func (sf *ScenarioFile) Apply(cfg *Config) {
	if cfg.Models == nil {
		cfg.Models = make(map[string]string)
	}
	for name, slug := range sf.Models {
		cfg.Models[name] = slug
	}

	if cfg.Scenarios == nil {
		cfg.Scenarios = make(map[string]string)
	}
	for label, prompt := range sf.Scenarios {
		cfg.Scenarios[label] = prompt
	}
}
