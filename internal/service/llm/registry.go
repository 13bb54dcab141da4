package llm

import (
	"context"
	"fmt"
	"sync"

	domainllm "infinitism/internal/domain/services/llm"
)

// ProviderSource creates providers by name. ProviderFactory is the production implementation.
type ProviderSource interface {
	GetProvider(ctx context.Context, providerName string) (domainllm.LLMProvider, error)
}

// ProviderRegistry manages LLM providers and routes model requests to the appropriate provider.
// Uses ParseModel to extract the provider from the model string, then the factory to create instances.
//
// ProviderRegistry itself implements LLMProvider, so callers inject it wherever a
// single provider is expected and route by model name.
type ProviderRegistry struct {
	factory ProviderSource
	cache   map[string]domainllm.LLMProvider
	mu      sync.RWMutex
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry(factory ProviderSource) *ProviderRegistry {
	return &ProviderRegistry{
		factory: factory,
		cache:   make(map[string]domainllm.LLMProvider),
	}
}

// GetProvider returns the provider for the given provider name, creating and caching it on first use.
func (r *ProviderRegistry) GetProvider(ctx context.Context, provider string) (domainllm.LLMProvider, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}

	// Fast path: read lock for cache hits
	r.mu.RLock()
	if cached, exists := r.cache[provider]; exists {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have created the provider while we waited for the lock
	if cached, exists := r.cache[provider]; exists {
		return cached, nil
	}

	p, err := r.factory.GetProvider(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider '%s': %w", provider, err)
	}

	r.cache[provider] = p
	return p, nil
}

// Name returns the registry name.
func (r *ProviderRegistry) Name() string {
	return "registry"
}

// SupportsModel reports whether the model string maps to a known provider.
func (r *ProviderRegistry) SupportsModel(model string) bool {
	_, err := ParseModel(model)
	return err == nil
}

// GenerateResponse resolves the provider from req.Model and forwards the request.
func (r *ProviderRegistry) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	info, err := ParseModel(req.Model)
	if err != nil {
		return nil, err
	}

	provider, err := r.GetProvider(ctx, info.Provider)
	if err != nil {
		return nil, err
	}

	routed := *req
	routed.Model = info.Model
	return provider.GenerateResponse(ctx, &routed)
}

// Validate checks if the factory is properly configured.
// Should be called at startup to fail fast if misconfigured.
func (r *ProviderRegistry) Validate() error {
	if r.factory == nil {
		return fmt.Errorf("provider factory is not configured")
	}
	return nil
}
