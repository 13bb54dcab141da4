package repositories

import (
	"context"

	"infinitism/internal/domain/models/mindmap"
)

// MindmapRepository defines data access operations for mind maps.
// Every lookup is scoped by owner; a mind map owned by someone else is
// reported as domain.ErrNotFound.
type MindmapRepository interface {
	// Create stores a new mind map. ID, CreatedAt and UpdatedAt must be set.
	Create(ctx context.Context, m *mindmap.Mindmap) error

	// GetByID returns a copy of the stored mind map.
	GetByID(ctx context.Context, id, userID string) (*mindmap.Mindmap, error)

	// List returns summaries of the owner's mind maps, newest first.
	List(ctx context.Context, userID string) ([]mindmap.Summary, error)

	// Update applies fn to the stored mind map atomically and persists the result.
	// If fn returns an error nothing is written and the error is returned.
	Update(ctx context.Context, id, userID string, fn func(m *mindmap.Mindmap) error) (*mindmap.Mindmap, error)

	// Delete removes the mind map.
	Delete(ctx context.Context, id, userID string) error
}
