package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"infinitism/internal/domain/models/llm"
	domainllm "infinitism/internal/domain/services/llm"
)

// Provider implements the LLMProvider interface for Google Gemini models.
type Provider struct {
	client *genai.Client
}

// NewProvider creates a Gemini provider backed by the Gemini Developer API.
func NewProvider(ctx context.Context, apiKey string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Provider{client: client}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "gemini"
}

// SupportsModel returns true for "gemini-*" models.
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}

// GenerateResponse sends the prompt as a single user turn.
func (p *Provider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by Gemini provider", req.Model)
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), buildConfig(req.Params))
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	return convertResponse(req.Model, resp), nil
}

func buildConfig(params *llm.RequestParams) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(params.GetMaxTokens(2048)),
	}
	if params == nil {
		return cfg
	}

	if params.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*params.Temperature))
	}
	if params.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*params.TopP))
	}
	if params.TopK != nil {
		cfg.TopK = genai.Ptr(float32(*params.TopK))
	}
	if params.System != nil {
		cfg.SystemInstruction = genai.NewContentFromText(*params.System, genai.RoleUser)
	}

	return cfg
}

func convertResponse(model string, resp *genai.GenerateContentResponse) *domainllm.GenerateResponse {
	out := &domainllm.GenerateResponse{
		Text:  resp.Text(),
		Model: model,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	if len(resp.Candidates) > 0 {
		out.StopReason = string(resp.Candidates[0].FinishReason)
	}
	return out
}
