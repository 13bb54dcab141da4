package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"infinitism/internal/domain"
	"infinitism/internal/httputil"
	"infinitism/internal/service/source"
)

// SourceHandler extracts text from uploads without generating anything
type SourceHandler struct {
	extractor *source.Extractor
	maxUpload int64
	logger    *slog.Logger
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(extractor *source.Extractor, maxUpload int64, logger *slog.Logger) *SourceHandler {
	return &SourceHandler{
		extractor: extractor,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Extract returns the text of the uploaded "file" part
// POST /api/sources
func (h *SourceHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if !httputil.IsMultipart(r) {
		httputil.RespondError(w, http.StatusBadRequest, "expected a multipart form with a file field")
		return
	}

	upload, err := httputil.ParseUpload(w, r, "file", h.maxUpload)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			err = &domain.ValidationError{Message: err.Error()}
		}
		handleError(w, h.logger, err)
		return
	}

	src, err := h.extractor.Extract(r.Context(), source.UploadedFile{
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Data:        upload.Data,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, src)
}
