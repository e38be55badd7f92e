package docsystem

import (
	"context"

	"docvault/internal/domain/models/docsystem"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create creates a new document
	Create(ctx context.Context, doc *docsystem.Document) error

	// GetByID retrieves a document by ID including extracted content
	GetByID(ctx context.Context, id string) (*docsystem.Document, error)

	// List returns documents matching the query. Content is not loaded.
	List(ctx context.Context, q docsystem.DocumentQuery) ([]docsystem.Document, error)

	// SearchContent returns documents matching the query with content loaded
	SearchContent(ctx context.Context, q docsystem.DocumentQuery) ([]docsystem.Document, error)

	// SetStarred updates the starred flag
	SetStarred(ctx context.Context, id string, starred bool) (*docsystem.Document, error)

	// UpdateSharing replaces shared_with and the permission lists
	UpdateSharing(ctx context.Context, id string, sharedWith []string, perms docsystem.Permissions) (*docsystem.Document, error)

	// SetTags replaces the tag list
	SetTags(ctx context.Context, id string, tagIDs []string) (*docsystem.Document, error)

	// UpdateContent stores extracted text
	UpdateContent(ctx context.Context, id, content string) error

	// Delete deletes a document
	Delete(ctx context.Context, id string) error

	// ListFolderIDsSharedWith returns the distinct folders containing a
	// document individually shared with the user
	ListFolderIDsSharedWith(ctx context.Context, userID string) ([]string, error)

	// CountInFolder counts documents directly inside a folder
	CountInFolder(ctx context.Context, folderID string) (int, error)

	// RemoveTag drops a tag id from every document carrying it
	RemoveTag(ctx context.Context, tagID string) error
}
