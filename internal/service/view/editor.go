package view

import (
	"fmt"

	"infinitism/internal/domain"
)

// Mode is the editor state.
type Mode string

const (
	ModeViewing Mode = "viewing"
	ModeEditing Mode = "editing"
)

// Editor is the viewing/editing(nodeID) state machine. It only tracks state;
// committing an edit is the session's job.
type Editor struct {
	mode   Mode
	nodeID string
	draft  string
}

func newEditor() *Editor {
	return &Editor{mode: ModeViewing}
}

// Mode returns the current state.
func (e *Editor) Mode() Mode { return e.mode }

// NodeID returns the node being edited, or "" while viewing.
func (e *Editor) NodeID() string { return e.nodeID }

// Draft returns the label the edit started from.
func (e *Editor) Draft() string { return e.draft }

// Begin enters editing for nodeID with the current label as the draft.
func (e *Editor) Begin(nodeID, label string) error {
	if e.mode != ModeViewing {
		return transitionError("begin_edit", e.mode)
	}
	e.mode = ModeEditing
	e.nodeID = nodeID
	e.draft = label
	return nil
}

// Finish leaves editing and returns the id that was being edited.
func (e *Editor) Finish(action string) (string, error) {
	if e.mode != ModeEditing {
		return "", transitionError(action, e.mode)
	}
	id := e.nodeID
	e.mode = ModeViewing
	e.nodeID = ""
	e.draft = ""
	return id, nil
}

func transitionError(action string, from Mode) error {
	return fmt.Errorf("%w: %s not allowed while %s", domain.ErrInvalidTransition, action, from)
}
