package prompts

import (
	"strings"

	"infinitism/internal/domain/models/llm"
)

// Prompt is a named instruction template with fixed decoding parameters.
type Prompt struct {
	Name     string       `yaml:"name"`
	Template string       `yaml:"template"`
	Params   PromptParams `yaml:"params"`
}

// PromptParams are the decoding parameters sent with a prompt.
type PromptParams struct {
	Temperature     float64 `yaml:"temperature"`
	TopK            int     `yaml:"top_k"`
	TopP            float64 `yaml:"top_p"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// RequestParams converts to the provider-neutral request parameters.
func (p PromptParams) RequestParams() *llm.RequestParams {
	return &llm.RequestParams{
		Temperature: llm.Float64(p.Temperature),
		TopK:        llm.Int(p.TopK),
		TopP:        llm.Float64(p.TopP),
		MaxTokens:   llm.Int(p.MaxOutputTokens),
	}
}

// Render fills the {{name}} placeholders of the template. Unknown placeholders are left as-is.
func (p *Prompt) Render(vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(p.Template)
}

type paletteFile struct {
	Palettes map[string][]string `yaml:"palettes"`
}
