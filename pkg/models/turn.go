package models

// FinishReasonContentFilter is the provider finish reason that marks a
// filtered completion. It is the only finish reason treated as a refusal;
// provider-specific refusal flags are deliberately not consulted.
const FinishReasonContentFilter = "content_filter"

// TurnResult is the outcome of one agent's single completion call.
type TurnResult struct {
	// Content is the generated text. Empty on refusal.
	Content string `json:"content"`
	// LatencyMS is wall-clock latency of the request/response boundary
	// in milliseconds, excluding local preprocessing.
	LatencyMS float64 `json:"latency_ms"`
	// InputTokens is the prompt token count reported by the provider,
	// zero when usage metadata is absent.
	InputTokens int64 `json:"input_tokens"`
	// OutputTokens is the completion token count reported by the provider,
	// zero when usage metadata is absent.
	OutputTokens int64 `json:"output_tokens"`
	// FinishReason is the provider's free-form finish reason string.
	FinishReason string `json:"finish_reason"`
	// IsRefusal marks a terminal content state that ends the run early.
	IsRefusal bool `json:"is_refusal"`
}

// Refusal reports whether a completion counts as a refusal: empty content,
// or a finish reason of "content_filter". This policy is encoded here and
// nowhere else.
func Refusal(content, finishReason string) bool {
	return content == "" || finishReason == FinishReasonContentFilter
}
