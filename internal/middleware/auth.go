package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/httputil"
)

// Authenticator resolves a bearer token to a stored user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid token. The token is read from
// the Authorization header, or from ?token= so that file links opened in a
// browser tab work.
func RequireAuth(authn Authenticator, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			user, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) {
					logger.Error("authentication failed", "error", err, "path", r.URL.Path)
					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				logger.Debug("token rejected", "error", err, "path", r.URL.Path)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, httputil.WithUser(r, user))
		})
	}
}

// RequireAdmin must run after RequireAuth
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := httputil.GetUser(r)
		if user == nil || user.Role != models.RoleAdmin {
			httputil.RespondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
