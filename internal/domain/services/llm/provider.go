package llm

import (
	"context"

	"infinitism/internal/domain/models/llm"
)

// LLMProvider defines the interface that all LLM providers must implement.
// Topic extraction depends only on this interface, so tests swap in fakes
// and no client is created at package level.
type LLMProvider interface {
	// GenerateResponse sends a single-turn prompt and returns the reply text.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "gemini", "anthropic")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// GenerateRequest contains the parameters for an LLM generation request.
type GenerateRequest struct {
	// Prompt is sent as a single user message.
	Prompt string

	// Model is the model identifier (e.g., "gemini-1.5-flash")
	Model string

	Params *llm.RequestParams
}

// GenerateResponse contains the LLM provider's response.
type GenerateResponse struct {
	// Text is the concatenated text content of the reply
	Text string

	// Model is the model that was used (may differ from request if aliased)
	Model string

	InputTokens  int
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "end_turn", "MAX_TOKENS")
	StopReason string
}
