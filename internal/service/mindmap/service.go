package mindmap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"infinitism/internal/config"
	"infinitism/internal/domain"
	models "infinitism/internal/domain/models/mindmap"
	"infinitism/internal/domain/repositories"
	"infinitism/internal/domain/services"
	"infinitism/internal/service/llm"
)

// service implements the MindmapService interface
type service struct {
	repo      repositories.MindmapRepository
	extractor services.TopicExtractor
	builder   *Builder
	gate      *GenerationGate
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new mind map service
func NewService(
	repo repositories.MindmapRepository,
	extractor services.TopicExtractor,
	builder *Builder,
	gate *GenerationGate,
	logger *slog.Logger,
) services.MindmapService {
	return &service{
		repo:      repo,
		extractor: extractor,
		builder:   builder,
		gate:      gate,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate builds and stores a mind map from text
func (s *service) Generate(ctx context.Context, req *services.GenerateRequest) (*models.Mindmap, error) {
	req.Text = strings.TrimSpace(req.Text)
	req.Model = strings.TrimSpace(req.Model)

	if err := s.validateGenerateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	release, err := s.gate.Acquire(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	started := s.now()
	extraction := s.extractor.ExtractWithModel(ctx, req.Text, req.Model)
	data := s.builder.Build(extraction.Topics)

	now := s.now()
	m := &models.Mindmap{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Data:       data,
		Generation: extraction.Generation(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	stats := data.Stats()
	s.logger.Info("mind map generated",
		"id", m.ID,
		"user_id", req.UserID,
		"source", extraction.Source,
		"model", extraction.Model,
		"node_count", stats.NodeCount,
		"duration_ms", now.Sub(started).Milliseconds(),
	)

	return m, nil
}

// Get retrieves a mind map by ID
func (s *service) Get(ctx context.Context, id, userID string) (*models.Mindmap, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// List retrieves all mind maps for a user
func (s *service) List(ctx context.Context, userID string) ([]models.Summary, error) {
	return s.repo.List(ctx, userID)
}

// Delete discards a mind map
func (s *service) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("mind map deleted", "id", id, "user_id", userID)
	return nil
}

// UpdateNodeText replaces a node label. Unknown node ids leave the tree untouched.
func (s *service) UpdateNodeText(ctx context.Context, id, userID, nodeID string, req *services.UpdateNodeTextRequest) (*models.Mindmap, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Text, validation.RuneLength(0, config.MaxNodeTextLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	updated, err := s.repo.Update(ctx, id, userID, func(m *models.Mindmap) error {
		if !m.Data.SetNodeText(nodeID, req.Text) {
			return &domain.NotFoundError{Message: fmt.Sprintf("node not found: %s", nodeID)}
		}
		m.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("node text updated",
		"id", id,
		"node_id", nodeID,
		"user_id", userID,
	)

	return updated, nil
}

// Stats recomputes statistics from the current model
func (s *service) Stats(ctx context.Context, id, userID string) (*models.Stats, error) {
	m, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	stats := m.Data.Stats()
	return &stats, nil
}

func (s *service) validateGenerateRequest(req *services.GenerateRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Text,
			validation.Required.Error("Please provide some text to generate a mind map"),
		),
		validation.Field(&req.Model, validation.By(validateModel)),
	)
}

func validateModel(value interface{}) error {
	model, _ := value.(string)
	if model == "" {
		return nil
	}
	if _, err := llm.ParseModel(model); err != nil {
		return validation.NewError("validation_model_unknown", err.Error())
	}
	return nil
}
