package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"infinitism/internal/domain"
	"infinitism/internal/httputil"
)

// handleError converts domain errors to problem responses. Typed errors carry
// their own status; sentinels are matched afterwards.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		unsupported *domain.UnsupportedMediaTypeError
		extraction  *domain.ExtractionError
		conflictErr *domain.ConflictError
		tooLarge    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &unsupported):
		httputil.RespondErrorWithExtras(w, http.StatusUnsupportedMediaType, unsupported.Error(),
			map[string]any{"mime_type": unsupported.MIMEType})
	case errors.As(err, &extraction):
		httputil.RespondError(w, http.StatusUnprocessableEntity, extraction.Error())
	case errors.As(err, &tooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrGenerationInProgress):
		httputil.RespondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(),
			map[string]any{"resource_type": conflictErr.ResourceType, "resource_id": conflictErr.ResourceID})
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requirePathValue reads a path wildcard, answering 400 when it is blank.
func requirePathValue(w http.ResponseWriter, r *http.Request, name, what string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		httputil.RespondError(w, http.StatusBadRequest, what+" is required")
		return "", false
	}
	return v, true
}

func validationf(format string, args ...any) error {
	return &domain.ValidationError{Message: fmt.Sprintf(format, args...)}
}
