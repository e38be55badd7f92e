package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/auth"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/middleware"
	"docvault/internal/repository/memory"
	accessSvc "docvault/internal/service/auth"
	"docvault/internal/service/chatbot"
	"docvault/internal/service/docsystem"
	"docvault/internal/service/docsystem/converter"
	"docvault/internal/service/identity"
	"docvault/internal/storage"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type api struct {
	t      *testing.T
	router http.Handler
	store  *memory.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()

	tokens, err := auth.NewJWTManager("test-secret", "docvault", time.Hour, logger)
	require.NoError(t, err)
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	depts := identity.NewDepartmentService(store.Departments(), store.Users(), logger)
	authSvc := identity.NewAuthService(store.Users(), depts, tokens, tokens, logger)
	users := identity.NewUserService(store.Users(), depts, logger)

	resolver := accessSvc.NewAccessResolver(store.Folders(), store.Documents(), logger)
	composer := accessSvc.NewQueryComposer(resolver, store.Invoices(), logger)
	validator := docsystem.NewResourceValidator(store.Users(), store.Departments(), store.Tags())
	indexer := docsystem.NewIndexer(store.Documents(), files, converter.NewConverterRegistry(), 1, logger)
	t.Cleanup(func() { _ = indexer.Close(context.Background()) })

	sharing := docsystem.NewSharingService(store.Folders(), store.Documents(), validator, logger)
	kb, err := chatbot.LoadKnowledge()
	require.NoError(t, err)

	h := &Handlers{
		Auth:        NewAuthHandler(authSvc, logger),
		Users:       NewUserHandler(users, logger),
		Departments: NewDepartmentHandler(depts, logger),
		Folders:     NewFolderHandler(docsystem.NewFolderService(store.Folders(), store.Documents(), resolver, composer, logger), sharing, logger),
		Documents:   NewDocumentHandler(docsystem.NewDocumentService(store.Documents(), resolver, composer, files, indexer, validator, logger), sharing, logger),
		Tags:        NewTagHandler(docsystem.NewTagService(store.Tags(), store.Documents(), store.TxManager(), logger), logger),
		Invoices:    NewInvoiceHandler(docsystem.NewInvoiceService(store.Invoices(), store.Documents(), resolver, composer, logger), logger),
		Chatbot:     NewChatbotHandler(chatbot.NewChatbotService(store.Users(), depts, store.Documents(), composer, nil, kb, chatbot.Options{}, logger), logger),
		Health:      NewHealthHandler(pingFunc(func(context.Context) error { return nil }), logger),
	}

	for _, name := range []string{"hr", "finance"} {
		require.NoError(t, store.Departments().Create(context.Background(), &models.Department{Name: name, DisplayName: strings.ToUpper(name), IsActive: true}))
	}
	return &api{t: t, router: NewRouter(h, middleware.RequireAuth(authSvc, logger)), store: store}
}

func (a *api) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *api) json(method, path, token string, payload any) *httptest.ResponseRecorder {
	a.t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(a.t, err)
		body = bytes.NewReader(b)
	}
	return a.do(method, path, token, body, "application/json")
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (a *api) register(name, dept string, role models.Role) session {
	a.t.Helper()
	rec := a.json(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": name, "email": strings.ToLower(name) + "@company.com", "password": "secret1",
		"department": dept, "role": role,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[session](a.t, rec)
}

func (a *api) upload(token, folderID, filename, content string) string {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(a.t, err)
	_, _ = io.WriteString(fw, content)
	if folderID != "" {
		require.NoError(a.t, mw.WriteField("folder", folderID))
	}
	require.NoError(a.t, mw.Close())

	rec := a.do(http.MethodPost, "/api/documents/upload", token, &buf, mw.FormDataContentType())
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[struct {
		ID string `json:"id"`
	}](a.t, rec).ID
}

func TestAuthRoutes(t *testing.T) {
	a := newAPI(t)
	alice := a.register("Alice", "finance", "")

	rec := a.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@company.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeBody[session](t, rec)
	assert.Equal(t, alice.User.ID, login.User.ID)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = a.json(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "FINANCE", me["department"].(map[string]any)["display_name"])

	assert.Equal(t, http.StatusUnauthorized, a.json(http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.json(http.MethodGet, "/api/auth/me", "junk", nil).Code)

	rec = a.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@company.com", "password": "nope!!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	rec = a.json(http.MethodPost, "/api/auth/register", "", map[string]any{"name": "X", "email": "alice@company.com", "password": "secret1", "department": "hr"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/register", "", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFolderAndDocumentRoutes(t *testing.T) {
	a := newAPI(t)
	alice := a.register("Alice", "finance", "")
	bob := a.register("Bob", "hr", "")

	rec := a.json(http.MethodPost, "/api/folders", alice.Token, map[string]any{"name": "Reports", "parent": nil})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reports := decodeBody[struct {
		ID string `json:"id"`
	}](t, rec).ID

	docID := a.upload(alice.Token, reports, "q1.txt", "quarterly numbers")

	assert.Equal(t, http.StatusForbidden, a.json(http.MethodGet, "/api/folders/"+reports, bob.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.json(http.MethodGet, "/api/documents/"+docID, bob.Token, nil).Code)

	rec = a.json(http.MethodPut, "/api/documents/"+docID+"/share", bob.Token, map[string]any{"user_ids": []string{bob.User.ID}})
	assert.Equal(t, http.StatusForbidden, rec.Code, "only the owner shares")
	rec = a.json(http.MethodPut, "/api/documents/"+docID+"/share", alice.Token, map[string]any{"user_ids": []string{bob.User.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.json(http.MethodGet, "/api/folders/"+reports, bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, view["has_access"])
	assert.Equal(t, false, view["can_view_content"])
	assert.Equal(t, true, view["has_shared_files"])
	assert.Equal(t, http.StatusForbidden, a.json(http.MethodGet, "/api/folders/"+reports+"/contents", bob.Token, nil).Code)

	rec = a.json(http.MethodGet, "/api/documents?shared=true", bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	rec = a.do(http.MethodGet, "/api/documents/"+docID+"/download", bob.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "quarterly numbers", rec.Body.String())
	assert.Equal(t, `attachment; filename=q1.txt`, rec.Header().Get("Content-Disposition"))

	rec = a.do(http.MethodGet, "/api/documents/"+docID+"/view?token="+bob.Token, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "inline"))

	rec = a.json(http.MethodGet, "/api/folders/tree", bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reports")

	assert.Equal(t, http.StatusForbidden, a.json(http.MethodDelete, "/api/documents/"+docID, bob.Token, nil).Code)
	assert.Equal(t, http.StatusConflict, a.json(http.MethodDelete, "/api/folders/"+reports, alice.Token, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.json(http.MethodDelete, "/api/documents/"+docID, alice.Token, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.json(http.MethodDelete, "/api/folders/"+reports, alice.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.json(http.MethodGet, "/api/documents/"+docID, alice.Token, nil).Code)
}

func TestUploadRejections(t *testing.T) {
	a := newAPI(t)
	alice := a.register("Alice", "finance", "")

	rec := a.do(http.MethodPost, "/api/documents/upload", alice.Token, strings.NewReader("not multipart"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder", "null"))
	require.NoError(t, mw.Close())
	rec = a.do(http.MethodPost, "/api/documents/upload", alice.Token, &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code, "file field missing")
}

func TestAdminRoutes(t *testing.T) {
	a := newAPI(t)
	root := a.register("Root", "hr", models.RoleAdmin)
	bob := a.register("Bob", "hr", "")

	rec := a.json(http.MethodPost, "/api/admin/departments", bob.Token, map[string]string{"name": "legal"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.json(http.MethodPost, "/api/admin/departments", root.Token, map[string]string{"name": "Legal"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.json(http.MethodGet, "/api/admin/departments", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 3)

	rec = a.json(http.MethodPost, "/api/admin/employees", root.Token, map[string]any{
		"name": "Eve", "email": "eve@company.com", "password": "secret1", "role": "manager", "department": "legal",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, a.json(http.MethodDelete, "/api/admin/employees/"+root.User.ID, root.Token, nil).Code)

	rec = a.json(http.MethodGet, "/api/users", bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 3)
}

func TestTagsInvoicesAndChatbot(t *testing.T) {
	a := newAPI(t)
	alice := a.register("Alice", "finance", "")

	rec := a.json(http.MethodPost, "/api/tags", alice.Token, map[string]string{"name": "urgent"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, http.StatusConflict, a.json(http.MethodPost, "/api/tags", alice.Token, map[string]string{"name": "urgent"}).Code)
	assert.Equal(t, http.StatusBadRequest, a.json(http.MethodPost, "/api/tags", alice.Token, map[string]string{"name": "x", "color": "red"}).Code)

	docID := a.upload(alice.Token, "", "inv.txt", "invoice")
	rec = a.json(http.MethodPost, "/api/invoices", alice.Token, map[string]any{
		"document_id": docID, "vendor_name": "Acme", "invoice_date": "2024-03-05", "invoice_value": 120.5, "invoice_qty": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.json(http.MethodGet, "/api/invoices?vendorName=acm&min_value=100", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)
	assert.Equal(t, http.StatusBadRequest, a.json(http.MethodGet, "/api/invoices?min_value=lots", alice.Token, nil).Code)

	rec = a.do(http.MethodGet, "/api/invoices/export", alice.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "invoice-records.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	rec = a.json(http.MethodGet, "/api/chatbot/models", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "claude-haiku")

	rec = a.json(http.MethodPost, "/api/chatbot/chat", alice.Token, map[string]string{"message": "how do I upload?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody[map[string]any](t, rec)["response"], "upload")
	assert.Equal(t, http.StatusBadRequest, a.json(http.MethodPost, "/api/chatbot/query", alice.Token, map[string]string{"message": ""}).Code)

	assert.Equal(t, http.StatusOK, a.json(http.MethodGet, "/health", "", nil).Code)
}

func TestHandleError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		err    error
		status int
	}{
		{domain.Validation("bad"), http.StatusBadRequest},
		{domain.NotFound("folder", "f1"), http.StatusNotFound},
		{fmt.Errorf("x: %w", domain.ErrUnauthorized), http.StatusUnauthorized},
		{domain.ErrAccessDenied, http.StatusForbidden},
		{domain.ErrPermissionDenied, http.StatusForbidden},
		{&domain.ConflictError{Message: "dup", ResourceType: "tag", ResourceID: "t1"}, http.StatusConflict},
		{&domain.IntegrityError{FolderID: "f1", Reason: "cycle"}, http.StatusInternalServerError},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, logger, tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	handleError(rec, logger, &domain.IntegrityError{FolderID: "f1", Reason: "cycle"})
	assert.NotContains(t, rec.Body.String(), "cycle", "integrity details stay in the log")
}

func TestHealth_DatabaseDown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("refused") }), logger)
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
