package docsystem

import (
	"context"
	"io"

	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/services"
)

// DocumentService handles document business logic
type DocumentService interface {
	// UploadDocument stores the file and schedules content extraction
	UploadDocument(ctx context.Context, user models.CurrentUser, req *UploadDocumentRequest) (*docsystem.Document, error)

	// ListDocuments lists documents for one of the listing modes
	ListDocuments(ctx context.Context, user models.CurrentUser, opts services.DocumentListOptions) ([]docsystem.Document, error)

	// GetDocument requires read access
	GetDocument(ctx context.Context, user models.CurrentUser, id string) (*docsystem.Document, error)

	// SetStarred requires read access
	SetStarred(ctx context.Context, user models.CurrentUser, id string, starred bool) (*docsystem.Document, error)

	// SetTags requires write access; tags must belong to the caller
	SetTags(ctx context.Context, user models.CurrentUser, id string, tagIDs []string) (*docsystem.Document, error)

	// OpenFile returns the stored bytes; requires read access. Caller closes.
	OpenFile(ctx context.Context, user models.CurrentUser, id string) (*docsystem.Document, io.ReadCloser, error)

	// DeleteDocument requires delete access and removes stored bytes
	DeleteDocument(ctx context.Context, user models.CurrentUser, id string) error
}

// UploadDocumentRequest carries one multipart file
type UploadDocumentRequest struct {
	FolderID     *string
	TagIDs       []string
	OriginalName string
	MimeType     string
	Size         int64
	Body         io.Reader
}
