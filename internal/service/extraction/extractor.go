package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"infinitism/internal/domain/models/mindmap"
	domainllm "infinitism/internal/domain/services/llm"
	"infinitism/internal/prompts"
)

// Extractor turns raw text into a TopicSet using a language model, falling
// back to keyword topics whenever the model cannot be used.
type Extractor struct {
	provider     domainllm.LLMProvider
	prompt       *prompts.Prompt
	topicPalette []string
	defaultModel string
	timeout      time.Duration
	logger       *slog.Logger
}

// NewExtractor wires an extractor. provider may be nil, in which case every
// extraction uses the keyword fallback.
func NewExtractor(
	provider domainllm.LLMProvider,
	registry *prompts.Registry,
	defaultModel string,
	timeout time.Duration,
	logger *slog.Logger,
) (*Extractor, error) {
	prompt, err := registry.Prompt(prompts.TopicExtraction)
	if err != nil {
		return nil, err
	}
	palette, err := registry.Palette(prompts.PaletteTopics)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		provider:     provider,
		prompt:       prompt,
		topicPalette: palette,
		defaultModel: defaultModel,
		timeout:      timeout,
		logger:       logger,
	}, nil
}

// Extract produces topics with the default model.
func (e *Extractor) Extract(ctx context.Context, content string) mindmap.Extraction {
	return e.ExtractWithModel(ctx, content, "")
}

// ExtractWithModel produces topics for content. It never fails: any model,
// transport or parse problem yields keyword topics with Source set to
// fallback and the reason recorded.
func (e *Extractor) ExtractWithModel(ctx context.Context, content, model string) mindmap.Extraction {
	if model == "" {
		model = e.defaultModel
	}

	topics, err := e.fromModel(ctx, content, model)
	if err == nil {
		e.logger.Debug("topics extracted",
			"model", model,
			"main_topics", len(topics.MainTopics),
		)
		return mindmap.Extraction{
			Topics: topics,
			Source: mindmap.SourceModel,
			Model:  model,
		}
	}

	e.logger.Warn("topic extraction degraded to keyword fallback",
		"model", model,
		"reason", err.Error(),
	)

	return mindmap.Extraction{
		Topics:         FallbackTopics(content, e.topicPalette),
		Source:         mindmap.SourceFallback,
		Model:          model,
		FallbackReason: err.Error(),
	}
}

func (e *Extractor) fromModel(ctx context.Context, content, model string) (mindmap.TopicSet, error) {
	if e.provider == nil {
		return mindmap.TopicSet{}, errors.New("no language model provider configured")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.provider.GenerateResponse(ctx, &domainllm.GenerateRequest{
		Prompt: e.BuildPrompt(content),
		Model:  model,
		Params: e.prompt.Params.RequestParams(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return mindmap.TopicSet{}, fmt.Errorf("model call timed out after %s", e.timeout)
		}
		return mindmap.TopicSet{}, err
	}

	return parseTopics(resp.Text)
}

// BuildPrompt renders the fixed instruction followed by the content.
func (e *Extractor) BuildPrompt(content string) string {
	return e.prompt.Render(map[string]string{
		"colors":  strings.Join(e.topicPalette, ", "),
		"content": content,
	})
}
