// Package handler exposes the services over HTTP. Handlers decode the
// request, call one service method and map domain errors to problem
// responses; access decisions live in the services.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/httputil"
)

// handleError writes the problem for err and logs server-side failures
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	p := httputil.ProblemFor(err)
	if p.Internal() {
		var integrityErr *domain.IntegrityError
		if errors.As(err, &integrityErr) {
			logger.Error("data integrity violation", "folder_id", integrityErr.FolderID, "reason", integrityErr.Reason)
		} else {
			logger.Error("request failed", "error", err)
		}
	}
	httputil.RespondProblem(w, p)
}

// requireUser returns the caller set by the auth middleware
func requireUser(w http.ResponseWriter, r *http.Request) (models.CurrentUser, bool) {
	user, ok := httputil.CurrentUser(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
	}
	return user, ok
}

// decode parses the JSON body and writes a 400 on failure
func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondProblem(w, httputil.ProblemFor(err))
			return false
		}
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// queryAny returns the first non-empty parameter among names
func queryAny(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, n := range names {
		if v := q.Get(n); v != "" {
			return v
		}
	}
	return ""
}
