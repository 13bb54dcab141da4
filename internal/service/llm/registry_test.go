package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	domainllm "infinitism/internal/domain/services/llm"
)

type stubProvider struct {
	name      string
	lastModel string
}

func (p *stubProvider) Name() string                   { return p.name }
func (p *stubProvider) SupportsModel(model string) bool { return true }
func (p *stubProvider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	p.lastModel = req.Model
	return &domainllm.GenerateResponse{Text: p.name + ":" + req.Prompt, Model: req.Model}, nil
}

type countingFactory struct {
	mu        sync.Mutex
	calls     map[string]int
	providers map[string]*stubProvider
}

func newCountingFactory() *countingFactory {
	return &countingFactory{
		calls: map[string]int{},
		providers: map[string]*stubProvider{
			"gemini":    {name: "gemini"},
			"anthropic": {name: "anthropic"},
		},
	}
}

func (f *countingFactory) GetProvider(ctx context.Context, name string) (domainllm.LLMProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	p, ok := f.providers[name]
	if !ok {
		return nil, errors.New("unsupported provider: " + name)
	}
	return p, nil
}

func TestProviderRegistryCachesProviders(t *testing.T) {
	factory := newCountingFactory()
	registry := NewProviderRegistry(factory)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := registry.GetProvider(context.Background(), "gemini"); err != nil {
				t.Errorf("GetProvider() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if factory.calls["gemini"] != 1 {
		t.Errorf("factory called %d times, want 1", factory.calls["gemini"])
	}
}

func TestProviderRegistryRoutesByModel(t *testing.T) {
	factory := newCountingFactory()
	registry := NewProviderRegistry(factory)

	tests := []struct {
		model        string
		wantText     string
		wantProvider string
		wantModel    string
		wantErr      bool
	}{
		{model: "gemini-1.5-flash", wantText: "gemini:hi", wantProvider: "gemini", wantModel: "gemini-1.5-flash"},
		{model: "claude-haiku-4-5", wantText: "anthropic:hi", wantProvider: "anthropic", wantModel: "claude-haiku-4-5"},
		{model: "gemini/gemini-2.0-flash", wantText: "gemini:hi", wantProvider: "gemini", wantModel: "gemini-2.0-flash"},
		{model: "openai/gpt-4", wantErr: true},
		{model: "mystery", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			resp, err := registry.GenerateResponse(context.Background(), &domainllm.GenerateRequest{Prompt: "hi", Model: tt.model})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateResponse() error = %v", err)
			}
			if resp.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", resp.Text, tt.wantText)
			}
			if got := factory.providers[tt.wantProvider].lastModel; got != tt.wantModel {
				t.Errorf("provider saw model %q, want %q", got, tt.wantModel)
			}
		})
	}
}

func TestProviderRegistryEmptyName(t *testing.T) {
	registry := NewProviderRegistry(newCountingFactory())
	if _, err := registry.GetProvider(context.Background(), ""); err == nil {
		t.Error("expected error for empty provider")
	}
}
