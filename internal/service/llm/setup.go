package llm

import (
	"fmt"
	"log/slog"

	"infinitism/internal/config"
)

// SetupProviders initializes the provider factory and registry for routing.
// Missing API keys are not fatal: generation falls back to keyword topics.
func SetupProviders(cfg *config.Config, logger *slog.Logger) (*ProviderRegistry, error) {
	registry := NewProviderRegistry(NewProviderFactory(cfg))

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("provider registry validation failed: %w", err)
	}

	if _, err := ParseModel(cfg.DefaultModel); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_MODEL: %w", err)
	}

	if cfg.GeminiAPIKey != "" {
		logger.Info("provider available", "name", "gemini", "models", "gemini-*")
	} else {
		logger.Warn("GEMINI_API_KEY not set - Gemini provider not available")
	}

	if cfg.AnthropicAPIKey != "" {
		logger.Info("provider available", "name", "anthropic", "models", "claude-*")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set - Anthropic provider not available")
	}

	logger.Info("provider available", "name", "lorem", "models", "lorem-*")
	logger.Info("provider registry initialized", "default_model", cfg.DefaultModel)

	return registry, nil
}
