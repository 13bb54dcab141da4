package handler

import (
	"log/slog"
	"net/http"

	"infinitism/internal/domain/services"
	"infinitism/internal/httputil"
	"infinitism/internal/service/export"
	"infinitism/internal/service/source"
	"infinitism/internal/service/view"
)

// Deps are the services behind the HTTP surface.
type Deps struct {
	Mindmaps  services.MindmapService
	Sources   *source.Extractor
	Exporter  *export.Exporter
	Views     *view.Registry
	MaxUpload int64
	Logger    *slog.Logger
}

// NewRouter registers every route (Go 1.22+ method patterns).
func NewRouter(d Deps) *http.ServeMux {
	mindmapHandler := NewMindmapHandler(d.Mindmaps, d.Sources, d.Exporter, d.Views, d.MaxUpload, d.Logger)
	sourceHandler := NewSourceHandler(d.Sources, d.MaxUpload, d.Logger)
	viewHandler := NewViewHandler(d.Views, d.Logger)
	pageHandler := NewPageHandler(d.Mindmaps, d.Sources, d.MaxUpload, d.Logger)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", HealthCheck)

	// Source extraction
	mux.HandleFunc("POST /api/sources", sourceHandler.Extract)

	// Mind map routes
	mux.HandleFunc("POST /api/mindmaps", mindmapHandler.Generate)
	mux.HandleFunc("GET /api/mindmaps", mindmapHandler.List)
	mux.HandleFunc("GET /api/mindmaps/{id}", mindmapHandler.Get)
	mux.HandleFunc("DELETE /api/mindmaps/{id}", mindmapHandler.Delete)
	mux.HandleFunc("PATCH /api/mindmaps/{id}/nodes/{nodeId}", mindmapHandler.UpdateNodeText)
	mux.HandleFunc("GET /api/mindmaps/{id}/stats", mindmapHandler.Stats)
	mux.HandleFunc("GET /api/mindmaps/{id}/layout", mindmapHandler.Layout)
	mux.HandleFunc("GET /api/mindmaps/{id}/render.svg", mindmapHandler.RenderSVG)
	mux.HandleFunc("GET /api/mindmaps/{id}/render.png", mindmapHandler.RenderPNG)
	mux.HandleFunc("GET /api/mindmaps/{id}/export.pdf", mindmapHandler.ExportPDF)
	mux.HandleFunc("GET /api/mindmaps/{id}/outline", mindmapHandler.Outline)

	// Viewer sessions
	mux.HandleFunc("POST /api/mindmaps/{id}/views", viewHandler.Open)
	mux.HandleFunc("GET /api/views/{id}", viewHandler.Get)
	mux.HandleFunc("POST /api/views/{id}/actions", viewHandler.Action)
	mux.HandleFunc("DELETE /api/views/{id}", viewHandler.Close)

	// Pages
	mux.HandleFunc("GET /{$}", pageHandler.Home)
	mux.HandleFunc("GET /generator", pageHandler.Generator)
	mux.HandleFunc("POST /generator", pageHandler.Generate)
	mux.HandleFunc("GET /viewer/{id}", pageHandler.Viewer)

	return mux
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
