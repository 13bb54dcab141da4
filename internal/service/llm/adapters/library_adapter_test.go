package adapters

import (
	"testing"

	"infinitism/internal/domain/models/llm"
	domainllm "infinitism/internal/domain/services/llm"
)

func TestToLibraryRequest(t *testing.T) {
	req := &domainllm.GenerateRequest{
		Prompt: "summarise",
		Model:  "claude-haiku-4-5",
		Params: &llm.RequestParams{
			Temperature: llm.Float64(0.7),
			TopK:        llm.Int(40),
			TopP:        llm.Float64(0.95),
			MaxTokens:   llm.Int(2048),
		},
	}

	got := toLibraryRequest(req)
	if got.Model != "claude-haiku-4-5" {
		t.Errorf("Model = %q", got.Model)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("Messages = %d, want 1", len(got.Messages))
	}
	msg := got.Messages[0]
	if msg.Role != "user" || len(msg.Blocks) != 1 {
		t.Fatalf("message = %+v", msg)
	}
	block := msg.Blocks[0]
	if block.BlockType != "text" || block.TextContent == nil || *block.TextContent != "summarise" {
		t.Errorf("block = %+v", block)
	}

	p := got.Params
	if p == nil {
		t.Fatal("Params is nil")
	}
	if p.Temperature == nil || *p.Temperature != 0.7 {
		t.Errorf("Temperature = %v", p.Temperature)
	}
	if p.TopK == nil || *p.TopK != 40 {
		t.Errorf("TopK = %v", p.TopK)
	}
	if p.TopP == nil || *p.TopP != 0.95 {
		t.Errorf("TopP = %v", p.TopP)
	}
	if p.MaxTokens == nil || *p.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %v", p.MaxTokens)
	}
	if p.System != nil {
		t.Errorf("System = %v, want nil", p.System)
	}
}

func TestToLibraryRequestNilParams(t *testing.T) {
	got := toLibraryRequest(&domainllm.GenerateRequest{Prompt: "x", Model: "lorem-fast"})
	if got.Params != nil {
		t.Errorf("Params = %+v, want nil", got.Params)
	}
}
