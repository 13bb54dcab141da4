package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"infinitism/internal/domain"
	"infinitism/internal/domain/models/mindmap"
	"infinitism/internal/domain/services"
	"infinitism/internal/httputil"
	"infinitism/internal/service/export"
	"infinitism/internal/service/layout"
	"infinitism/internal/service/source"
	"infinitism/internal/service/view"
)

// MindmapHandler handles mind map HTTP requests
type MindmapHandler struct {
	service   services.MindmapService
	sources   *source.Extractor
	exporter  *export.Exporter
	views     *view.Registry
	maxUpload int64
	logger    *slog.Logger
}

// NewMindmapHandler creates a new mind map handler
func NewMindmapHandler(
	service services.MindmapService,
	sources *source.Extractor,
	exporter *export.Exporter,
	views *view.Registry,
	maxUpload int64,
	logger *slog.Logger,
) *MindmapHandler {
	return &MindmapHandler{
		service:   service,
		sources:   sources,
		exporter:  exporter,
		views:     views,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// mindmapResponse is a stored document with its derived statistics.
type mindmapResponse struct {
	*mindmap.Mindmap
	Stats mindmap.Stats `json:"stats"`
}

func newMindmapResponse(m *mindmap.Mindmap) mindmapResponse {
	return mindmapResponse{Mindmap: m, Stats: m.Data.Stats()}
}

// Generate builds a mind map from pasted text or an uploaded file
// POST /api/mindmaps
func (h *MindmapHandler) Generate(w http.ResponseWriter, r *http.Request) {
	req, err := h.generateRequest(w, r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	m, err := h.service.Generate(r.Context(), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, newMindmapResponse(m))
}

// generateRequest accepts a JSON body or a multipart form carrying either a
// file or a text field. A file wins over text.
func (h *MindmapHandler) generateRequest(w http.ResponseWriter, r *http.Request) (*services.GenerateRequest, error) {
	req := &services.GenerateRequest{UserID: httputil.GetUserID(r)}

	if !httputil.IsMultipart(r) {
		if err := httputil.ParseJSON(w, r, req); err != nil {
			return nil, &domain.ValidationError{Message: "Invalid request body"}
		}
		req.UserID = httputil.GetUserID(r)
		return req, nil
	}

	req.Model = r.FormValue("model")
	text, err := readSourceText(w, r, h.sources, h.maxUpload)
	if err != nil {
		return nil, err
	}
	req.Text = text
	return req, nil
}

// readSourceText returns the extracted text of the "file" part, or the
// "text" field when no file was sent.
func readSourceText(w http.ResponseWriter, r *http.Request, sources *source.Extractor, maxUpload int64) (string, error) {
	upload, err := httputil.ParseUpload(w, r, "file", maxUpload)
	if errors.Is(err, httputil.ErrNoFile) {
		return r.FormValue("text"), nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", err
		}
		return "", &domain.ValidationError{Message: err.Error()}
	}

	src, err := sources.Extract(r.Context(), source.UploadedFile{
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Data:        upload.Data,
	})
	if err != nil {
		return "", err
	}
	return src.Text, nil
}

// List returns the caller's mind maps
// GET /api/mindmaps
func (h *MindmapHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if summaries == nil {
		summaries = []mindmap.Summary{}
	}
	httputil.RespondJSON(w, http.StatusOK, summaries)
}

// Get returns one mind map with statistics
// GET /api/mindmaps/{id}
func (h *MindmapHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newMindmapResponse(m))
}

// Delete discards a mind map
// DELETE /api/mindmaps/{id}
func (h *MindmapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathValue(w, r, "id", "Mind map ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if h.views != nil {
		h.views.CloseMindmap(userID, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateNodeBody struct {
	Text httputil.OptionalString `json:"text"`
}

// UpdateNodeText replaces one node label
// PATCH /api/mindmaps/{id}/nodes/{nodeId}
func (h *MindmapHandler) UpdateNodeText(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathValue(w, r, "id", "Mind map ID")
	if !ok {
		return
	}
	nodeID, ok := requirePathValue(w, r, "nodeId", "Node ID")
	if !ok {
		return
	}

	var body updateNodeBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !body.Text.Present || body.Text.Value == nil {
		httputil.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	m, err := h.service.UpdateNodeText(r.Context(), id, httputil.GetUserID(r), nodeID,
		&services.UpdateNodeTextRequest{Text: body.Text.String()})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newMindmapResponse(m))
}

// Stats returns node count and depth
// GET /api/mindmaps/{id}/stats
func (h *MindmapHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathValue(w, r, "id", "Mind map ID")
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}

// Layout returns the computed node positions
// GET /api/mindmaps/{id}/layout
func (h *MindmapHandler) Layout(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newLayoutResponse(layout.Compute(m.Data)))
}

// RenderSVG returns the diagram as SVG
// GET /api/mindmaps/{id}/render.svg
func (h *MindmapHandler) RenderSVG(w http.ResponseWriter, r *http.Request) {
	h.writeExport(w, r, export.FormatSVG, false)
}

// RenderPNG returns the diagram as PNG
// GET /api/mindmaps/{id}/render.png
func (h *MindmapHandler) RenderPNG(w http.ResponseWriter, r *http.Request) {
	h.writeExport(w, r, export.FormatPNG, false)
}

// ExportPDF downloads the single-page PDF
// GET /api/mindmaps/{id}/export.pdf
func (h *MindmapHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	h.writeExport(w, r, export.FormatPDF, true)
}

// Outline returns the ASCII tree. ?ids=true appends node ids.
// GET /api/mindmaps/{id}/outline
func (h *MindmapHandler) Outline(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}

	showIDs := r.URL.Query().Get("ids") == "true"
	httputil.RespondBytes(w, "text/plain; charset=utf-8", "", []byte(export.Outline(m.Data, showIDs)+"\n"))
}

func (h *MindmapHandler) writeExport(w http.ResponseWriter, r *http.Request, format export.Format, attachment bool) {
	id, ok := requirePathValue(w, r, "id", "Mind map ID")
	if !ok {
		return
	}

	artifact, err := h.exporter.Export(r.Context(), id, httputil.GetUserID(r), format)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	filename := ""
	if attachment || r.URL.Query().Get("download") == "true" {
		filename = artifact.Filename
	}
	httputil.RespondBytes(w, artifact.ContentType, filename, artifact.Data)
}

func (h *MindmapHandler) load(w http.ResponseWriter, r *http.Request) (*mindmap.Mindmap, bool) {
	id, ok := requirePathValue(w, r, "id", "Mind map ID")
	if !ok {
		return nil, false
	}

	m, err := h.service.Get(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return nil, false
	}
	return m, true
}

// Layout DTOs. layout.Node links back to its parent, so it is flattened here.
type (
	layoutResponse struct {
		Title   string       `json:"title"`
		Width   float64      `json:"width"`
		Height  float64      `json:"height"`
		ViewBox [4]float64   `json:"view_box"`
		Nodes   []layoutNode `json:"nodes"`
		Links   []layoutLink `json:"links"`
	}

	layoutNode struct {
		ID          string    `json:"id"`
		ParentID    string    `json:"parent_id,omitempty"`
		Label       string    `json:"label"`
		Description string    `json:"description,omitempty"`
		Color       string    `json:"color,omitempty"`
		Depth       int       `json:"depth"`
		X           float64   `json:"x"`
		Y           float64   `json:"y"`
		Box         layoutBox `json:"box"`
	}

	layoutBox struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Fill   string  `json:"fill"`
		Stroke string  `json:"stroke"`
		TextX  float64 `json:"text_x"`
		Anchor string  `json:"anchor"`
	}

	layoutLink struct {
		Source string `json:"source"`
		Target string `json:"target"`
		Path   string `json:"path"`
	}
)

func newLayoutResponse(l *layout.Layout) layoutResponse {
	resp := layoutResponse{
		Title:   l.Title,
		Width:   l.Width,
		Height:  l.Height,
		ViewBox: [4]float64{l.ViewBox.MinX, l.ViewBox.MinY, l.ViewBox.Width, l.ViewBox.Height},
		Nodes:   make([]layoutNode, 0, len(l.Nodes)),
		Links:   make([]layoutLink, 0, len(l.Links)),
	}

	for _, n := range l.Nodes {
		node := layoutNode{
			ID:          n.ID,
			Label:       n.Label,
			Description: n.Description,
			Color:       n.Color,
			Depth:       n.Depth,
			X:           n.X,
			Y:           n.Y,
			Box: layoutBox{
				X:      n.Box.X,
				Y:      n.Box.Y,
				Width:  n.Box.Width,
				Height: n.Box.Height,
				Fill:   n.Box.Fill,
				Stroke: n.Box.Stroke,
				TextX:  n.Box.TextX,
				Anchor: string(n.Box.Anchor),
			},
		}
		if n.Parent != nil {
			node.ParentID = n.Parent.ID
		}
		resp.Nodes = append(resp.Nodes, node)
	}

	for _, link := range l.Links {
		resp.Links = append(resp.Links, layoutLink{
			Source: link.Source.ID,
			Target: link.Target.ID,
			Path:   link.Path(),
		})
	}
	return resp
}
