package llm

import (
	"testing"

	"infinitism/internal/config"
)

func TestProviderFactory(t *testing.T) {
	factory := NewProviderFactory(&config.Config{})

	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{"lorem needs no key", "lorem", false},
		{"anthropic without key", "anthropic", true},
		{"gemini without key", "gemini", true},
		{"unknown provider", "openai", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := factory.GetProvider(t.Context(), tt.provider)
			if tt.wantErr {
				if err == nil {
					t.Errorf("GetProvider(%q) expected error", tt.provider)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetProvider(%q): %v", tt.provider, err)
			}
			if p == nil {
				t.Fatalf("GetProvider(%q) returned nil provider", tt.provider)
			}
		})
	}
}
