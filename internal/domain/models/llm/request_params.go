package llm

// RequestParams holds decoding parameters shared by every provider.
// Nil fields mean "provider default"; adapters copy what they support.
type RequestParams struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	System      *string  `json:"system,omitempty"`
}

// GetMaxTokens returns MaxTokens or the given default.
func (p *RequestParams) GetMaxTokens(defaultValue int) int {
	if p == nil || p.MaxTokens == nil || *p.MaxTokens <= 0 {
		return defaultValue
	}
	return *p.MaxTokens
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
