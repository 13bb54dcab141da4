package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"infinitism/internal/domain"
	"infinitism/internal/domain/models/mindmap"
	"infinitism/internal/domain/services"
	"infinitism/internal/httputil"
	"infinitism/internal/service/export"
	"infinitism/internal/service/layout"
	"infinitism/internal/service/render"
	"infinitism/internal/service/source"
)

// MissingMindmapNotice is shown on the generator after a viewer redirect.
const MissingMindmapNotice = "No mind map data found. Please generate a new one."

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageHandler serves the server-rendered generator and viewer pages
type PageHandler struct {
	service   services.MindmapService
	sources   *source.Extractor
	maxUpload int64
	logger    *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(service services.MindmapService, sources *source.Extractor, maxUpload int64, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		service:   service,
		sources:   sources,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

type generatorPage struct {
	Notice string
	Text   string
}

type viewerPage struct {
	ID      string
	Title   string
	Stats   mindmap.Stats
	SVG     template.HTML
	Outline string
}

// Generator shows the input form
// GET /generator
func (h *PageHandler) Generator(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "generator.html", generatorPage{Notice: r.URL.Query().Get("notice")})
}

// Generate handles the form and redirects to the new mind map
// POST /generator
func (h *PageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	req := &services.GenerateRequest{UserID: httputil.GetUserID(r)}

	var err error
	if httputil.IsMultipart(r) {
		req.Text, err = readSourceText(w, r, h.sources, h.maxUpload)
	} else {
		req.Text = r.FormValue("text")
	}

	var m *mindmap.Mindmap
	if err == nil {
		m, err = h.service.Generate(r.Context(), req)
	}
	if err != nil {
		status := http.StatusInternalServerError
		notice := "Failed to generate the mind map. Please try again."
		var (
			httpErr  domain.HTTPError
			tooLarge *http.MaxBytesError
		)
		switch {
		case errors.As(err, &tooLarge):
			status, notice = http.StatusRequestEntityTooLarge, "The uploaded file is too large."
		case errors.As(err, &httpErr):
			status, notice = httpErr.StatusCode(), httpErr.Error()
		case errors.Is(err, domain.ErrValidation):
			status, notice = http.StatusBadRequest, err.Error()
		case errors.Is(err, domain.ErrGenerationInProgress):
			status, notice = http.StatusTooManyRequests, err.Error()
		default:
			h.logger.Error("page generation failed", "error", err)
		}
		h.render(w, status, "generator.html", generatorPage{Notice: notice, Text: req.Text})
		return
	}

	http.Redirect(w, r, "/viewer/"+url.PathEscape(m.ID), http.StatusSeeOther)
}

// Viewer renders a stored mind map. A missing map sends the user back to
// the generator with a notice.
// GET /viewer/{id}
func (h *PageHandler) Viewer(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), r.PathValue("id"), httputil.GetUserID(r))
	if errors.Is(err, domain.ErrNotFound) {
		http.Redirect(w, r, "/generator?notice="+url.QueryEscape(MissingMindmapNotice), http.StatusSeeOther)
		return
	}
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var svg bytes.Buffer
	if err := render.SVG(&svg, layout.Compute(m.Data)); err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.render(w, http.StatusOK, "viewer.html", viewerPage{
		ID:      m.ID,
		Title:   m.Data.Title,
		Stats:   m.Data.Stats(),
		SVG:     template.HTML(svg.String()),
		Outline: export.Outline(m.Data, false),
	})
}

// Home redirects to the generator
// GET /{$}
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/generator", http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("template failed", "template", name, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
