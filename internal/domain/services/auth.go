package services

import (
	"context"

	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
)

// AccessResolver is the single source of truth for who may see what.
// Every listing, content read, and search goes through it.
type AccessResolver interface {
	// ResolveFolderVisibility returns every folder visible to the user:
	// direct access, folders holding documents shared with the user, and
	// the ancestors of both.
	ResolveFolderVisibility(ctx context.Context, user models.CurrentUser) (docsystem.Visibility, error)

	// CanAccessFolderContents reports direct access to the folder.
	// Returns ErrNotFound when the folder does not exist.
	CanAccessFolderContents(ctx context.Context, user models.CurrentUser, folderID string) (bool, error)

	// CanAccessDocument reports whether the user may perform action on the document.
	// Returns ErrNotFound when the document does not exist.
	CanAccessDocument(ctx context.Context, user models.CurrentUser, documentID string, action docsystem.Action) (bool, error)

	// AccessibleFolderIDs returns the folders the user has direct access to.
	AccessibleFolderIDs(ctx context.Context, user models.CurrentUser) ([]string, error)

	// RequireFolderContents returns ErrAccessDenied instead of false.
	RequireFolderContents(ctx context.Context, user models.CurrentUser, folderID string) (*docsystem.Folder, error)

	// RequireDocument loads the document and returns ErrAccessDenied when
	// the action is not allowed.
	RequireDocument(ctx context.Context, user models.CurrentUser, documentID string, action docsystem.Action) (*docsystem.Document, error)
}

// QueryComposer turns resolver output into store predicates.
type QueryComposer interface {
	ComposeDocumentQuery(ctx context.Context, user models.CurrentUser, opts DocumentListOptions) (docsystem.DocumentQuery, error)

	// ComposeFolderQuery also returns the visibility map used to decorate results.
	ComposeFolderQuery(ctx context.Context, user models.CurrentUser, opts FolderListOptions) (docsystem.FolderQuery, docsystem.Visibility, error)

	// DocumentScope returns the role-wide scope, or nil for privileged users.
	DocumentScope(ctx context.Context, user models.CurrentUser) (*docsystem.DocumentScope, error)
}

// DocumentListOptions mirrors the document listing query string.
type DocumentListOptions struct {
	MyDrive  bool
	Shared   bool
	Invoices bool

	FolderSet bool
	FolderID  *string

	Starred bool
	Search  string
	TagID   string
	Sort    string
}

// FolderListOptions mirrors the folder listing query string.
type FolderListOptions struct {
	ParentSet bool
	ParentID  *string
}
