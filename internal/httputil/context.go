package httputil

import (
	"context"
	"net/http"
)

type contextKey string

const ownerKey contextKey = "owner"

// WithUserID stores the authenticated owner of the request.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(ContextWithUserID(r.Context(), userID))
}

// ContextWithUserID is WithUserID for code that only holds a context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ownerKey, userID)
}

// GetUserID returns the owner set by the auth middleware, or "".
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(ownerKey).(string)
	return userID
}
