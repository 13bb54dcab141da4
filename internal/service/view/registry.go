package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"infinitism/internal/domain"
	"infinitism/internal/domain/services"
)

// DefaultIdleTimeout is how long an untouched session survives.
const DefaultIdleTimeout = 2 * time.Hour

type sessionKey struct {
	userID string
	id     string
}

// Registry keeps viewer sessions in memory, keyed by UUID and owner.
type Registry struct {
	mindmaps    services.MindmapService
	idleTimeout time.Duration
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

// NewRegistry creates a session registry.
func NewRegistry(mindmaps services.MindmapService, idleTimeout time.Duration, logger *slog.Logger) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		mindmaps:    mindmaps,
		idleTimeout: idleTimeout,
		logger:      logger,
		sessions:    make(map[sessionKey]*Session),
	}
}

// Open starts a viewer session for an existing mind map. A missing mind map
// fails with domain.ErrNotFound and no session is created.
func (r *Registry) Open(ctx context.Context, userID, mindmapID string, wrapperW, wrapperH float64) (*Session, error) {
	m, err := r.mindmaps.Get(ctx, mindmapID, userID)
	if err != nil {
		return nil, err
	}

	s := newSession(uuid.NewString(), userID, m, r.mindmaps, wrapperW, wrapperH)

	r.mu.Lock()
	r.pruneLocked(time.Now())
	r.sessions[sessionKey{userID: userID, id: s.id}] = s
	r.mu.Unlock()

	r.logger.Debug("viewer session opened", "session_id", s.id, "mindmap_id", mindmapID, "user_id", userID)
	return s, nil
}

// Get returns the caller's session.
func (r *Registry) Get(userID, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionKey{userID: userID, id: id}]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("view session not found: %s", id)}
	}
	return s, nil
}

// Close discards the caller's session.
func (r *Registry) Close(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{userID: userID, id: id}
	if _, ok := r.sessions[key]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("view session not found: %s", id)}
	}
	delete(r.sessions, key)
	return nil
}

// CloseMindmap discards every session attached to a deleted mind map.
func (r *Registry) CloseMindmap(userID, mindmapID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	closed := 0
	for key, s := range r.sessions {
		if key.userID == userID && s.mindmapID == mindmapID {
			delete(r.sessions, key)
			closed++
		}
	}
	return closed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) pruneLocked(now time.Time) {
	for key, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.idleTimeout {
			delete(r.sessions, key)
			r.logger.Debug("viewer session expired", "session_id", key.id)
		}
	}
}
