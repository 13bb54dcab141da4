package mindmap

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"infinitism/internal/domain"
)

// GenerationGate allows one generation per user and caps the total number
// of generations in flight.
type GenerationGate struct {
	global *semaphore.Weighted

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewGenerationGate creates a gate admitting at most limit concurrent generations.
func NewGenerationGate(limit int) *GenerationGate {
	if limit < 1 {
		limit = 1
	}
	return &GenerationGate{
		global:   semaphore.NewWeighted(int64(limit)),
		inFlight: make(map[string]struct{}),
	}
}

// Acquire reserves the user's slot without waiting, then waits for a global
// slot until ctx is done. The returned release func must be called exactly once.
func (g *GenerationGate) Acquire(ctx context.Context, userID string) (func(), error) {
	g.mu.Lock()
	if _, busy := g.inFlight[userID]; busy {
		g.mu.Unlock()
		return nil, domain.ErrGenerationInProgress
	}
	g.inFlight[userID] = struct{}{}
	g.mu.Unlock()

	if err := g.global.Acquire(ctx, 1); err != nil {
		g.releaseUser(userID)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.global.Release(1)
			g.releaseUser(userID)
		})
	}, nil
}

func (g *GenerationGate) releaseUser(userID string) {
	g.mu.Lock()
	delete(g.inFlight, userID)
	g.mu.Unlock()
}
