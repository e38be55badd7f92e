package handler

import (
	"net/http"

	"docvault/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Departments *DepartmentHandler
	Folders     *FolderHandler
	Documents   *DocumentHandler
	Tags        *TagHandler
	Invoices    *InvoiceHandler
	Chatbot     *ChatbotHandler
	Health      *HealthHandler
}

// NewRouter registers all routes (Go 1.22+ patterns). requireAuth guards
// every route except health, register, login, the department list and the
// model catalog.
func NewRouter(h *Handlers, requireAuth middleware.Middleware) *http.ServeMux {
	mux := http.NewServeMux()
	authed := func(fn http.HandlerFunc) http.Handler { return requireAuth(fn) }
	admin := func(fn http.HandlerFunc) http.Handler {
		return middleware.Chain(requireAuth, middleware.RequireAdmin)(fn)
	}

	mux.HandleFunc("GET /health", h.Health.Health)

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.Handle("GET /api/auth/me", authed(h.Auth.Me))

	// Users
	mux.Handle("GET /api/users", authed(h.Users.ListUsers))
	mux.Handle("GET /api/users/{id}", authed(h.Users.GetUser))

	// Admin
	mux.Handle("GET /api/admin/employees", admin(h.Users.ListUsers))
	mux.Handle("POST /api/admin/employees", admin(h.Users.CreateEmployee))
	mux.Handle("PUT /api/admin/employees/{id}", admin(h.Users.UpdateEmployee))
	mux.Handle("DELETE /api/admin/employees/{id}", admin(h.Users.DeleteEmployee))
	mux.HandleFunc("GET /api/admin/departments", h.Departments.ListActive)
	mux.Handle("POST /api/admin/departments", admin(h.Departments.Create))
	mux.Handle("PUT /api/admin/departments/{id}", admin(h.Departments.Update))
	mux.Handle("DELETE /api/admin/departments/{id}", admin(h.Departments.Delete))

	// Folders
	mux.Handle("POST /api/folders", authed(h.Folders.CreateFolder))
	mux.Handle("GET /api/folders", authed(h.Folders.ListFolders))
	mux.Handle("GET /api/folders/tree", authed(h.Folders.GetTree))
	mux.Handle("GET /api/folders/{id}", authed(h.Folders.GetFolder))
	mux.Handle("GET /api/folders/{id}/contents", authed(h.Folders.GetContents))
	mux.Handle("PUT /api/folders/{id}", authed(h.Folders.RenameFolder))
	mux.Handle("DELETE /api/folders/{id}", authed(h.Folders.DeleteFolder))
	mux.Handle("PUT /api/folders/{id}/share", authed(h.Folders.ShareWithUsers))
	mux.Handle("PUT /api/folders/{id}/departments", authed(h.Folders.ShareWithDepartments))

	// Documents
	mux.Handle("POST /api/documents/upload", authed(h.Documents.UploadDocument))
	mux.Handle("GET /api/documents", authed(h.Documents.ListDocuments))
	mux.Handle("GET /api/documents/{id}", authed(h.Documents.GetDocument))
	mux.Handle("PUT /api/documents/{id}/star", authed(h.Documents.SetStarred))
	mux.Handle("PUT /api/documents/{id}/share", authed(h.Documents.ShareDocument))
	mux.Handle("PUT /api/documents/{id}/tags", authed(h.Documents.SetTags))
	mux.Handle("GET /api/documents/{id}/download", authed(h.Documents.Download))
	mux.Handle("GET /api/documents/{id}/view", authed(h.Documents.View))
	mux.Handle("DELETE /api/documents/{id}", authed(h.Documents.DeleteDocument))

	// Tags
	mux.Handle("GET /api/tags", authed(h.Tags.ListTags))
	mux.Handle("POST /api/tags", authed(h.Tags.CreateTag))
	mux.Handle("PUT /api/tags/{id}", authed(h.Tags.UpdateTag))
	mux.Handle("DELETE /api/tags/{id}", authed(h.Tags.DeleteTag))

	// Invoices
	mux.Handle("POST /api/invoices", authed(h.Invoices.CreateInvoice))
	mux.Handle("GET /api/invoices", authed(h.Invoices.ListInvoices))
	mux.Handle("GET /api/invoices/export", authed(h.Invoices.ExportInvoices))
	mux.Handle("GET /api/invoices/{id}", authed(h.Invoices.GetInvoice))
	mux.Handle("PUT /api/invoices/{id}", authed(h.Invoices.UpdateInvoice))
	mux.Handle("DELETE /api/invoices/{id}", authed(h.Invoices.DeleteInvoice))

	// Chatbot
	mux.Handle("POST /api/chatbot/chat", authed(h.Chatbot.Chat))
	mux.Handle("POST /api/chatbot/query", authed(h.Chatbot.Chat))
	mux.HandleFunc("GET /api/chatbot/models", h.Chatbot.Models)

	return mux
}
