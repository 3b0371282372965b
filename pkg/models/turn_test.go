package models

import "testing"

func TestRefusal(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		finishReason string
		want         bool
	}{
		{"normal completion", "Hello there.", "stop", false},
		{"empty content", "", "stop", true},
		{"content filter", "partial text", "content_filter", true},
		{"empty and filtered", "", "content_filter", true},
		{"length-capped is not a refusal", "truncated...", "length", false},
		{"unknown finish reason is not a refusal", "ok", "model_specific_reason", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Refusal(tt.content, tt.finishReason); got != tt.want {
				t.Errorf("Refusal(%q, %q) = %v, want %v", tt.content, tt.finishReason, got, tt.want)
			}
		})
	}
}

func TestSamplingParamsMerge(t *testing.T) {
	base := SamplingParams{
		Temperature: Float64(1.0),
		MaxTokens:   Int64(1000),
		Extra:       map[string]any{"top_p": 0.9, "seed": 7},
	}

	merged := base.Merge(SamplingParams{
		Temperature: Float64(0.2),
		Extra:       map[string]any{"top_p": 0.5},
	})

	if *merged.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", *merged.Temperature)
	}
	if *merged.MaxTokens != 1000 {
		t.Errorf("expected max tokens 1000 preserved, got %v", *merged.MaxTokens)
	}
	if merged.Extra["top_p"] != 0.5 {
		t.Errorf("expected override top_p 0.5, got %v", merged.Extra["top_p"])
	}
	if merged.Extra["seed"] != 7 {
		t.Errorf("expected base seed 7 preserved, got %v", merged.Extra["seed"])
	}

	// Base must be untouched.
	if base.Extra["top_p"] != 0.9 {
		t.Errorf("merge mutated the base params: top_p = %v", base.Extra["top_p"])
	}
	if *base.Temperature != 1.0 {
		t.Errorf("merge mutated the base params: temperature = %v", *base.Temperature)
	}
}

func TestSamplingParamsMergeEmptyOverride(t *testing.T) {
	base := SamplingParams{Temperature: Float64(0.7)}
	merged := base.Merge(SamplingParams{})

	if merged.Temperature == nil || *merged.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7 preserved, got %v", merged.Temperature)
	}
	if merged.MaxTokens != nil {
		t.Errorf("expected nil max tokens, got %v", *merged.MaxTokens)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant} {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if Role("narrator").Valid() {
		t.Error("expected unknown role to be invalid")
	}
}
