package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"infinitism/internal/domain/models/mindmap"
	"infinitism/internal/httputil"
	"infinitism/internal/service/view"
)

// Viewer actions accepted by POST /api/views/{id}/actions
const (
	ActionBeginEdit     = "begin_edit"
	ActionConfirmEdit   = "confirm_edit"
	ActionCancelEdit    = "cancel_edit"
	ActionBlur          = "blur"
	ActionZoomIn        = "zoom_in"
	ActionZoomOut       = "zoom_out"
	ActionReset         = "reset"
	ActionPan           = "pan"
	ActionZoom          = "zoom"
	ActionToggleSidebar = "toggle_sidebar"
)

// ViewHandler drives interactive viewer sessions
type ViewHandler struct {
	registry *view.Registry
	logger   *slog.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(registry *view.Registry, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{
		registry: registry,
		logger:   logger,
	}
}

type openViewRequest struct {
	WrapperWidth  float64 `json:"wrapper_width"`
	WrapperHeight float64 `json:"wrapper_height"`
}

type viewResponse struct {
	view.Snapshot
	Stats *mindmap.Stats `json:"stats,omitempty"`
}

// ActionRequest is one viewer interaction. Only the fields used by Action
// are read.
type ActionRequest struct {
	Action string  `json:"action"`
	NodeID string  `json:"node_id,omitempty"`
	Text   *string `json:"text,omitempty"`
	Step   float64 `json:"step,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// Open starts a viewer session. The body is optional.
// POST /api/mindmaps/{id}/views
func (h *ViewHandler) Open(w http.ResponseWriter, r *http.Request) {
	mindmapID, ok := requirePathValue(w, r, "id", "Mind map ID")
	if !ok {
		return
	}

	var req openViewRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, err := h.registry.Open(r.Context(), httputil.GetUserID(r), mindmapID, req.WrapperWidth, req.WrapperHeight)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.respond(w, r, s, http.StatusCreated)
}

// Get returns the session state with fresh statistics
// GET /api/views/{id}
func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, http.StatusOK)
}

// Action applies one interaction and returns the new state
// POST /api/views/{id}/actions
func (h *ViewHandler) Action(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ActionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.apply(r, s, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.respond(w, r, s, http.StatusOK)
}

func (h *ViewHandler) apply(r *http.Request, s *view.Session, req *ActionRequest) error {
	step := req.Step
	if step <= 0 {
		step = view.DefaultZoomStep
	}

	switch req.Action {
	case ActionBeginEdit:
		_, err := s.BeginEdit(r.Context(), req.NodeID)
		return err
	case ActionConfirmEdit:
		text := s.Snapshot().Draft
		if req.Text != nil {
			text = *req.Text
		}
		_, err := s.Confirm(r.Context(), text)
		return err
	case ActionCancelEdit:
		return s.Cancel()
	case ActionBlur:
		return s.Blur()
	case ActionZoomIn:
		s.ZoomIn(step)
	case ActionZoomOut:
		s.ZoomOut(step)
	case ActionReset:
		s.ResetView()
	case ActionPan:
		s.Pan(req.DX, req.DY)
	case ActionZoom:
		if req.Factor <= 0 {
			return validationf("zoom factor must be positive")
		}
		s.ZoomAt(req.Factor, req.X, req.Y)
	case ActionToggleSidebar:
		s.ToggleSidebar()
	default:
		return validationf("unknown action: %q", req.Action)
	}
	return nil
}

// Close ends a viewer session
// DELETE /api/views/{id}
func (h *ViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathValue(w, r, "id", "View ID")
	if !ok {
		return
	}

	if err := h.registry.Close(httputil.GetUserID(r), id); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ViewHandler) session(w http.ResponseWriter, r *http.Request) (*view.Session, bool) {
	id, ok := requirePathValue(w, r, "id", "View ID")
	if !ok {
		return nil, false
	}

	s, err := h.registry.Get(httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, h.logger, err)
		return nil, false
	}
	return s, true
}

func (h *ViewHandler) respond(w http.ResponseWriter, r *http.Request, s *view.Session, status int) {
	stats, err := s.Stats(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, status, viewResponse{Snapshot: s.Snapshot(), Stats: stats})
}
