package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "docvault/internal/domain/services/docsystem"
	"docvault/internal/httputil"
)

// TagHandler handles the caller's tags
type TagHandler struct {
	tagService docsysSvc.TagService
	logger     *slog.Logger
}

func NewTagHandler(tagService docsysSvc.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{tagService: tagService, logger: logger}
}

// GET /api/tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	tags, err := h.tagService.ListTags(r.Context(), user)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tags)
}

// POST /api/tags
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req docsysSvc.TagRequest
	if !decode(w, r, &req) {
		return
	}
	tag, err := h.tagService.CreateTag(r.Context(), user, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, tag)
}

// PUT /api/tags/{id}
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req docsysSvc.TagRequest
	if !decode(w, r, &req) {
		return
	}
	tag, err := h.tagService.UpdateTag(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tag)
}

// DELETE /api/tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.tagService.DeleteTag(r.Context(), user, r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondNoContent(w)
}
