package httputil

import (
	"context"
	"net/http"

	"docvault/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	userKey      contextKey = "user"
	requestIDKey contextKey = "requestID"
)

// WithUser adds the authenticated user to the request context
func WithUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), userKey, user)
	return r.WithContext(ctx)
}

// GetUser retrieves the authenticated user, or nil on public routes
func GetUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

// CurrentUser returns the identity used for access checks
func CurrentUser(r *http.Request) (models.CurrentUser, bool) {
	user := GetUser(r)
	if user == nil {
		return models.CurrentUser{}, false
	}
	return user.Current(), true
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id, or empty string if not set
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
