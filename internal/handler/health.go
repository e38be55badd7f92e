package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"docvault/internal/httputil"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health reports whether the database answers
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		httputil.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "unavailable",
			"database": "down",
		})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"database": "up",
		"time":     time.Now().UTC(),
	})
}
