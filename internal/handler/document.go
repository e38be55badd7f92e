package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"docvault/internal/config"
	"docvault/internal/domain/services"
	docsysSvc "docvault/internal/domain/services/docsystem"
	"docvault/internal/httputil"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temp files.
const multipartMemory = 8 << 20

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService     docsysSvc.DocumentService
	sharingService docsysSvc.SharingService
	logger         *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService docsysSvc.DocumentService, sharingService docsysSvc.SharingService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService:     docService,
		sharingService: sharingService,
		logger:         logger,
	}
}

// UploadDocument stores one multipart file
// POST /api/documents/upload (fields: file, folder?, tags?)
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file exceeds the 50MB limit")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if header.Size > config.MaxUploadSize {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file exceeds the 50MB limit")
		return
	}

	tagIDs, err := parseTagField(r.FormValue("tags"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var folderID *string
	if v := strings.TrimSpace(r.FormValue("folder")); v != "" && v != "null" {
		folderID = &v
	}

	doc, err := h.docService.UploadDocument(r.Context(), user, &docsysSvc.UploadDocumentRequest{
		FolderID:     folderID,
		TagIDs:       tagIDs,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		Body:         file,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// parseTagField accepts a JSON array or a comma-separated list
func parseTagField(v string) ([]string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if strings.HasPrefix(v, "[") {
		var ids []string
		if err := json.Unmarshal([]byte(v), &ids); err != nil {
			return nil, errors.New("tags must be a JSON array of ids")
		}
		return ids, nil
	}
	return strings.Split(v, ","), nil
}

// ListDocuments lists documents for one listing mode
// GET /api/documents?mydrive&shared&invoices&folder&starred&search&tag&sort
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	folderID, folderSet := httputil.QueryNullableID(r, "folder")
	opts := services.DocumentListOptions{
		MyDrive:   httputil.QueryBool(r, "mydrive") || httputil.QueryBool(r, "mydrives"),
		Shared:    httputil.QueryBool(r, "shared"),
		Invoices:  httputil.QueryBool(r, "invoices"),
		FolderSet: folderSet,
		FolderID:  folderID,
		Starred:   httputil.QueryBool(r, "starred"),
		Search:    r.URL.Query().Get("search"),
		TagID:     r.URL.Query().Get("tag"),
		Sort:      r.URL.Query().Get("sort"),
	}
	docs, err := h.docService.ListDocuments(r.Context(), user, opts)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	doc, err := h.docService.GetDocument(r.Context(), user, r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// PUT /api/documents/{id}/star
func (h *DocumentHandler) SetStarred(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Starred *bool `json:"starred"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Starred == nil {
		httputil.RespondError(w, http.StatusBadRequest, "starred is required")
		return
	}
	doc, err := h.docService.SetStarred(r.Context(), user, r.PathValue("id"), *body.Starred)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// PUT /api/documents/{id}/share
func (h *DocumentHandler) ShareDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req docsysSvc.ShareDocumentRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := h.sharingService.ShareDocument(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// PUT /api/documents/{id}/tags
func (h *DocumentHandler) SetTags(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		TagIDs []string `json:"tag_ids"`
	}
	if !decode(w, r, &body) {
		return
	}
	doc, err := h.docService.SetTags(r.Context(), user, r.PathValue("id"), body.TagIDs)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Download sends the file as an attachment
// GET /api/documents/{id}/download
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "attachment")
}

// View sends the file inline; the token may come from ?token=
// GET /api/documents/{id}/view
func (h *DocumentHandler) View(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "inline")
}

func (h *DocumentHandler) serveFile(w http.ResponseWriter, r *http.Request, disposition string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	doc, body, err := h.docService.OpenFile(r.Context(), user, r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer body.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": doc.OriginalName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if doc.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("file stream interrupted", "document_id", doc.ID, "error", err)
	}
}

// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.docService.DeleteDocument(r.Context(), user, r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondNoContent(w)
}
