package llm

import (
	"context"
	"fmt"

	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"

	"infinitism/internal/config"
	domainllm "infinitism/internal/domain/services/llm"
	"infinitism/internal/service/llm/adapters"
	"infinitism/internal/service/llm/providers/gemini"
)

// ProviderFactory creates LLM provider instances from configured API keys.
type ProviderFactory struct {
	config *config.Config
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
	}
}

// GetProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "gemini" - Google Gemini models (default)
//   - "anthropic" - Claude models via meridian-llm-go
//   - "lorem" - offline mock provider, no API key required
func (f *ProviderFactory) GetProvider(ctx context.Context, providerName string) (domainllm.LLMProvider, error) {
	switch providerName {
	case "gemini":
		if f.config.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
		return gemini.NewProvider(ctx, f.config.GeminiAPIKey)

	case "anthropic":
		return f.createAnthropicProvider()

	case "lorem":
		return adapters.NewLibraryAdapter(lorem.NewProvider()), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func (f *ProviderFactory) createAnthropicProvider() (domainllm.LLMProvider, error) {
	if f.config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	provider, err := anthropic.NewProvider(f.config.AnthropicAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}

	return adapters.NewLibraryAdapter(provider), nil
}
