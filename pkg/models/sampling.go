package models

// SamplingParams configures generation for a completion call.
// The common knobs are typed fields; anything provider-specific goes
// through Extra and is passed to the endpoint untouched.
type SamplingParams struct {
	// Temperature controls sampling randomness. Nil means provider default.
	Temperature *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
	// MaxTokens caps the generated output length. Nil means provider default.
	MaxTokens *int64 `json:"max_tokens,omitempty" mapstructure:"max_tokens"`
	// Extra holds provider-specific passthrough options (top_p, seed, ...).
	Extra map[string]any `json:"extra,omitempty" mapstructure:"extra"`
}

// Merge returns a copy of p with non-nil fields from override applied on
// top. Extra maps are merged key-by-key, override winning.
func (p SamplingParams) Merge(override SamplingParams) SamplingParams {
	out := p
	if override.Temperature != nil {
		out.Temperature = override.Temperature
	}
	if override.MaxTokens != nil {
		out.MaxTokens = override.MaxTokens
	}
	if len(override.Extra) > 0 {
		merged := make(map[string]any, len(p.Extra)+len(override.Extra))
		for k, v := range p.Extra {
			merged[k] = v
		}
		for k, v := range override.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}

// Float64 returns a pointer to v, for building SamplingParams literals.
func Float64(v float64) *float64 { return &v }

// Int64 returns a pointer to v, for building SamplingParams literals.
func Int64(v int64) *int64 { return &v }
