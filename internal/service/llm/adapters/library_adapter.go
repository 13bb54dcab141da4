package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	llmprovider "github.com/haowjy/meridian-llm-go"

	"infinitism/internal/domain/models/llm"
	domainllm "infinitism/internal/domain/services/llm"
)

const blockTypeText = "text"

// LibraryAdapter wraps a meridian-llm-go provider (anthropic, lorem) and
// implements the single-turn LLMProvider interface.
type LibraryAdapter struct {
	provider llmprovider.Provider
}

// NewLibraryAdapter wraps an existing library provider.
func NewLibraryAdapter(provider llmprovider.Provider) *LibraryAdapter {
	return &LibraryAdapter{provider: provider}
}

// Name returns the provider name.
func (a *LibraryAdapter) Name() string {
	return a.provider.Name().String()
}

// SupportsModel returns true if the wrapped provider supports the given model.
func (a *LibraryAdapter) SupportsModel(model string) bool {
	return a.provider.SupportsModel(model)
}

// GenerateResponse sends the prompt as one user message and joins the text blocks of the reply.
func (a *LibraryAdapter) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	resp, err := a.provider.GenerateResponse(ctx, toLibraryRequest(req))
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%s API call failed (status %d): %w", a.Name(), apiErr.StatusCode, err)
		}
		return nil, fmt.Errorf("%s API call failed: %w", a.Name(), err)
	}

	var text strings.Builder
	for _, block := range resp.Blocks {
		// thinking and tool blocks are not used
		if block.BlockType == blockTypeText && block.TextContent != nil {
			text.WriteString(*block.TextContent)
		}
	}

	return &domainllm.GenerateResponse{
		Text:         text.String(),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		StopReason:   resp.StopReason,
	}, nil
}

func toLibraryRequest(req *domainllm.GenerateRequest) *llmprovider.GenerateRequest {
	prompt := req.Prompt
	return &llmprovider.GenerateRequest{
		Messages: []llmprovider.Message{{
			Role: "user",
			Blocks: []*llmprovider.Block{{
				BlockType:   blockTypeText,
				Sequence:    0,
				TextContent: &prompt,
			}},
		}},
		Model:  req.Model,
		Params: toLibraryParams(req.Params),
	}
}

func toLibraryParams(params *llm.RequestParams) *llmprovider.RequestParams {
	if params == nil {
		return nil
	}
	return &llmprovider.RequestParams{
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		TopK:        params.TopK,
		System:      params.System,
	}
}
