package handler

import (
	"log/slog"
	"net/http"

	"docvault/internal/domain/services"
	"docvault/internal/httputil"
)

// DepartmentHandler handles department HTTP requests
type DepartmentHandler struct {
	departmentService services.DepartmentService
	logger            *slog.Logger
}

func NewDepartmentHandler(departmentService services.DepartmentService, logger *slog.Logger) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService, logger: logger}
}

// ListActive is public so the registration form can offer departments
// GET /api/admin/departments
func (h *DepartmentHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	depts, err := h.departmentService.ListActive(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, depts)
}

// POST /api/admin/departments
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req services.CreateDepartmentRequest
	if !decode(w, r, &req) {
		return
	}
	dept, err := h.departmentService.Create(r.Context(), caller, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, dept)
}

// PUT /api/admin/departments/{id}
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req services.UpdateDepartmentRequest
	if !decode(w, r, &req) {
		return
	}
	dept, err := h.departmentService.Update(r.Context(), caller, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, dept)
}

// DELETE /api/admin/departments/{id}
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.departmentService.Delete(r.Context(), caller, r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondNoContent(w)
}
