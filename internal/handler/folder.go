package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"docvault/internal/domain/services"
	docsysSvc "docvault/internal/domain/services/docsystem"
	"docvault/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService  docsysSvc.FolderService
	sharingService docsysSvc.SharingService
	logger         *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService docsysSvc.FolderService, sharingService docsysSvc.SharingService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService:  folderService,
		sharingService: sharingService,
		logger:         logger,
	}
}

type createFolderBody struct {
	Name     string  `json:"name"`
	Parent   *string `json:"parent"`
	ParentID *string `json:"parent_id"`
}

func (b createFolderBody) parent() *string {
	p := b.ParentID
	if p == nil {
		p = b.Parent
	}
	if p == nil {
		return nil
	}
	if v := strings.TrimSpace(*p); v != "" && v != "null" {
		return &v
	}
	return nil
}

// CreateFolder creates a folder owned by the caller
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body createFolderBody
	if !decode(w, r, &body) {
		return
	}
	folder, err := h.folderService.CreateFolder(r.Context(), user, &docsysSvc.CreateFolderRequest{
		Name:     body.Name,
		ParentID: body.parent(),
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// ListFolders lists visible folders, optionally under one parent
// GET /api/folders?parent=<id|null>
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	parentID, parentSet := httputil.QueryNullableID(r, "parent")
	folders, err := h.folderService.ListFolders(r.Context(), user, services.FolderListOptions{
		ParentSet: parentSet,
		ParentID:  parentID,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

// GetFolder returns folder metadata with access flags
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	folder, err := h.folderService.GetFolder(r.Context(), user, r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// GetContents lists subfolders and documents
// GET /api/folders/{id}/contents
func (h *FolderHandler) GetContents(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	contents, err := h.folderService.GetContents(r.Context(), user, r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contents)
}

// GetTree returns the nested hierarchy of visible folders
// GET /api/folders/tree
func (h *FolderHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	tree, err := h.folderService.GetTree(r.Context(), user)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree)
}

// RenameFolder renames a folder
// PUT /api/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req docsysSvc.UpdateFolderRequest
	if !decode(w, r, &req) {
		return
	}
	folder, err := h.folderService.RenameFolder(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes an empty folder
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.folderService.DeleteFolder(r.Context(), user, r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondNoContent(w)
}

// ShareWithUsers replaces the folder's user share list
// PUT /api/folders/{id}/share
func (h *FolderHandler) ShareWithUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		UserIDs []string `json:"user_ids"`
	}
	if !decode(w, r, &body) {
		return
	}
	folder, err := h.sharingService.ShareFolderWithUsers(r.Context(), user, r.PathValue("id"), body.UserIDs)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ShareWithDepartments replaces the folder's department list
// PUT /api/folders/{id}/departments
func (h *FolderHandler) ShareWithDepartments(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		DepartmentIDs []string `json:"department_ids"`
	}
	if !decode(w, r, &body) {
		return
	}
	folder, err := h.sharingService.ShareFolderWithDepartments(r.Context(), user, r.PathValue("id"), body.DepartmentIDs)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}
