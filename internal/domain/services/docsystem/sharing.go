package docsystem

import (
	"context"

	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
)

// SharingService replaces sharing lists. Callers must own the entity or hold
// an elevated role; otherwise ErrPermissionDenied.
type SharingService interface {
	ShareDocument(ctx context.Context, user models.CurrentUser, documentID string, req *ShareDocumentRequest) (*docsystem.Document, error)
	ShareFolderWithUsers(ctx context.Context, user models.CurrentUser, folderID string, userIDs []string) (*docsystem.Folder, error)
	ShareFolderWithDepartments(ctx context.Context, user models.CurrentUser, folderID string, departmentIDs []string) (*docsystem.Folder, error)
}

// ShareDocumentRequest replaces the document's share list. A nil Read list
// defaults to UserIDs; nil Write/Delete lists grant nothing.
type ShareDocumentRequest struct {
	UserIDs     []string          `json:"user_ids"`
	Permissions *PermissionsInput `json:"permissions,omitempty"`
}

type PermissionsInput struct {
	Read   []string `json:"read,omitempty"`
	Write  []string `json:"write,omitempty"`
	Delete []string `json:"delete,omitempty"`
}
