// Package view holds interactive viewer sessions: the edit state machine,
// the pan/zoom viewport and the sidebar toggle for one open mind map.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"infinitism/internal/domain"
	"infinitism/internal/domain/models/mindmap"
	"infinitism/internal/domain/services"
	"infinitism/internal/service/layout"
)

// Snapshot is the externally visible session state.
type Snapshot struct {
	ID            string        `json:"id"`
	MindmapID     string        `json:"mindmap_id"`
	Mode          Mode          `json:"mode"`
	EditingNodeID string        `json:"editing_node_id,omitempty"`
	Draft         string        `json:"draft,omitempty"`
	SidebarOpen   bool          `json:"sidebar_open"`
	Viewport      ViewportState `json:"viewport"`
}

// Session is one viewer attached to one mind map.
type Session struct {
	id        string
	userID    string
	mindmapID string
	mindmaps  services.MindmapService

	mu          sync.Mutex
	editor      *Editor
	viewport    *Viewport
	sidebarOpen bool
	lastActive  time.Time
}

func newSession(id, userID string, m *mindmap.Mindmap, mindmaps services.MindmapService, wrapperW, wrapperH float64) *Session {
	l := layout.Compute(m.Data)
	return &Session{
		id:          id,
		userID:      userID,
		mindmapID:   m.ID,
		mindmaps:    mindmaps,
		editor:      newEditor(),
		viewport:    NewViewport(wrapperW, wrapperH, l.Width+2*ContentPadding, l.Height+2*ContentPadding),
		sidebarOpen: true,
		lastActive:  time.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// MindmapID returns the id of the mind map being viewed.
func (s *Session) MindmapID() string { return s.mindmapID }

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:            s.id,
		MindmapID:     s.mindmapID,
		Mode:          s.editor.Mode(),
		EditingNodeID: s.editor.NodeID(),
		Draft:         s.editor.Draft(),
		SidebarOpen:   s.sidebarOpen,
		Viewport:      s.viewport.State(),
	}
}

// BeginEdit starts editing a node and returns its current label.
// The root and unknown ids are rejected.
func (s *Session) BeginEdit(ctx context.Context, nodeID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.editor.Mode() != ModeViewing {
		return "", transitionError("begin_edit", s.editor.Mode())
	}
	if nodeID == layout.RootID || nodeID == "" {
		return "", &domain.ValidationError{Message: "the mind map title cannot be edited here"}
	}

	m, err := s.mindmaps.Get(ctx, s.mindmapID, s.userID)
	if err != nil {
		return "", err
	}
	node, ok := m.Data.FindNode(nodeID)
	if !ok {
		return "", &domain.NotFoundError{Message: fmt.Sprintf("node not found: %s", nodeID)}
	}

	if err := s.editor.Begin(nodeID, node.Text); err != nil {
		return "", err
	}
	return node.Text, nil
}

// Confirm commits text to the node being edited and returns to viewing.
// Invalid text keeps the editor open. The store is written without holding
// the session lock.
func (s *Session) Confirm(ctx context.Context, text string) (*mindmap.Mindmap, error) {
	s.mu.Lock()
	s.touch()
	if mode := s.editor.Mode(); mode != ModeEditing {
		s.mu.Unlock()
		return nil, transitionError("confirm_edit", mode)
	}
	nodeID := s.editor.NodeID()
	s.mu.Unlock()

	updated, err := s.mindmaps.UpdateNodeText(ctx, s.mindmapID, s.userID, nodeID,
		&services.UpdateNodeTextRequest{Text: text})

	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, domain.ErrValidation) {
		return nil, err
	}
	// A cancel or blur may have landed while the update was in flight.
	if s.editor.Mode() == ModeEditing && s.editor.NodeID() == nodeID {
		_, _ = s.editor.Finish("confirm_edit")
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel leaves editing without committing.
func (s *Session) Cancel() error {
	return s.leave("cancel_edit")
}

// Blur leaves editing without committing, as when the input loses focus.
func (s *Session) Blur() error {
	return s.leave("blur")
}

func (s *Session) leave(action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	_, err := s.editor.Finish(action)
	return err
}

// ZoomIn zooms around the wrapper centre.
func (s *Session) ZoomIn(step float64) {
	s.withViewport(func(v *Viewport) { v.ZoomIn(step) })
}

// ZoomOut zooms out around the wrapper centre.
func (s *Session) ZoomOut(step float64) {
	s.withViewport(func(v *Viewport) { v.ZoomOut(step) })
}

// ResetView returns to the initial centred view.
func (s *Session) ResetView() {
	s.withViewport(func(v *Viewport) { v.Reset() })
}

// Pan moves the diagram.
func (s *Session) Pan(dx, dy float64) {
	s.withViewport(func(v *Viewport) { v.Pan(dx, dy) })
}

// ZoomAt zooms around a wrapper point, as for wheel or pinch gestures.
func (s *Session) ZoomAt(factor, px, py float64) {
	s.withViewport(func(v *Viewport) { v.ZoomAt(factor, px, py) })
}

func (s *Session) withViewport(fn func(*Viewport)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	fn(s.viewport)
}

// ToggleSidebar flips the sidebar and returns the new state.
func (s *Session) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.sidebarOpen = !s.sidebarOpen
	return s.sidebarOpen
}

// Stats recomputes statistics from the stored mind map.
func (s *Session) Stats(ctx context.Context) (*mindmap.Stats, error) {
	return s.mindmaps.Stats(ctx, s.mindmapID, s.userID)
}

// Mindmap returns the current stored mind map.
func (s *Session) Mindmap(ctx context.Context) (*mindmap.Mindmap, error) {
	return s.mindmaps.Get(ctx, s.mindmapID, s.userID)
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
