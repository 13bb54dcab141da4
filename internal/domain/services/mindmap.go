package services

import (
	"context"

	"infinitism/internal/domain/models/mindmap"
)

// GenerateRequest asks for a new mind map built from raw text.
type GenerateRequest struct {
	UserID string `json:"-"`
	Text   string `json:"text"`
	Model  string `json:"model,omitempty"` // empty uses the configured default
}

// UpdateNodeTextRequest replaces the label of one node.
type UpdateNodeTextRequest struct {
	Text string `json:"text"`
}

// TopicExtractor turns text into topics. Implementations never fail; see mindmap.Extraction.
type TopicExtractor interface {
	Extract(ctx context.Context, content string) mindmap.Extraction
	ExtractWithModel(ctx context.Context, content, model string) mindmap.Extraction
}

// MindmapService defines business logic operations for mind maps
type MindmapService interface {
	// Generate extracts topics from req.Text, builds the mind map and stores it.
	// At most one generation per user runs at a time (domain.ErrGenerationInProgress).
	Generate(ctx context.Context, req *GenerateRequest) (*mindmap.Mindmap, error)

	// Get retrieves a mind map by ID
	Get(ctx context.Context, id, userID string) (*mindmap.Mindmap, error)

	// List retrieves all mind maps for a user
	List(ctx context.Context, userID string) ([]mindmap.Summary, error)

	// Delete discards a mind map
	Delete(ctx context.Context, id, userID string) error

	// UpdateNodeText replaces the text of the first node matching nodeID
	UpdateNodeText(ctx context.Context, id, userID, nodeID string, req *UpdateNodeTextRequest) (*mindmap.Mindmap, error)

	// Stats recomputes node count and depth from the stored model
	Stats(ctx context.Context, id, userID string) (*mindmap.Stats, error)
}
