package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"infinitism/internal/domain"
	"infinitism/internal/domain/models/mindmap"
	"infinitism/internal/domain/repositories"
)

// MindmapRepository keeps mind maps in process memory. Stored values are
// deep copies, so callers can never mutate the store by accident.
type MindmapRepository struct {
	mu     sync.RWMutex
	items  map[string]*mindmap.Mindmap
	logger *slog.Logger
}

// NewMindmapRepository creates an empty in-memory repository
func NewMindmapRepository(logger *slog.Logger) repositories.MindmapRepository {
	return &MindmapRepository{
		items:  make(map[string]*mindmap.Mindmap),
		logger: logger,
	}
}

func (r *MindmapRepository) Create(ctx context.Context, m *mindmap.Mindmap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[m.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("mind map %s already exists", m.ID),
			ResourceType: "mindmap",
			ResourceID:   m.ID,
		}
	}

	r.items[m.ID] = m.Clone()
	r.logger.Debug("mind map stored", "id", m.ID, "user_id", m.UserID)
	return nil
}

func (r *MindmapRepository) GetByID(ctx context.Context, id, userID string) (*mindmap.Mindmap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, err := r.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	return m.Clone(), nil
}

func (r *MindmapRepository) List(ctx context.Context, userID string) ([]mindmap.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]mindmap.Summary, 0)
	for _, m := range r.items {
		if m.UserID == userID {
			out = append(out, m.Summary())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MindmapRepository) Update(ctx context.Context, id, userID string, fn func(m *mindmap.Mindmap) error) (*mindmap.Mindmap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.lookup(id, userID)
	if err != nil {
		return nil, err
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	r.items[id] = working.Clone()
	return working, nil
}

func (r *MindmapRepository) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookup(id, userID); err != nil {
		return err
	}
	delete(r.items, id)
	return nil
}

// lookup must be called with r.mu held
func (r *MindmapRepository) lookup(id, userID string) (*mindmap.Mindmap, error) {
	m, ok := r.items[id]
	if !ok || m.UserID != userID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("mind map not found: %s", id)}
	}
	return m, nil
}
