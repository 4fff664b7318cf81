package middleware

import (
	"context"
	"net/http"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ViewerIDKey is the context key for the requesting viewer's participant id.
const ViewerIDKey contextKey = "viewer_id"

// ViewerHeader is the request header naming the viewer.
const ViewerHeader = "X-Viewer-ID"

// GetViewerID extracts the viewer's participant id from the context.
// Returns empty string if not set.
func GetViewerID(ctx context.Context) string {
	id, _ := ctx.Value(ViewerIDKey).(string)
	return id
}

// WithViewerID injects the viewer's participant id into the context.
func WithViewerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ViewerIDKey, id)
}

// Viewer resolves the requesting viewer from the X-Viewer-ID header,
// falling back to the viewer query parameter. There is no account
// system: every balance question is asked from someone's point of view,
// and this is how handlers learn whose.
func Viewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewerID := r.Header.Get(ViewerHeader)
		if viewerID == "" {
			viewerID = r.URL.Query().Get("viewer")
		}
		if viewerID != "" {
			r = r.WithContext(WithViewerID(r.Context(), viewerID))
		}
		next.ServeHTTP(w, r)
	})
}
