package docsystem

import (
	"context"

	"docvault/internal/domain/models/docsystem"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *docsystem.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*docsystem.Folder, error)

	// UpdateName renames a folder
	UpdateName(ctx context.Context, id, name string) (*docsystem.Folder, error)

	// SetSharedWith replaces the user share list and the derived is_shared flag
	SetSharedWith(ctx context.Context, id string, userIDs []string) (*docsystem.Folder, error)

	// SetDepartmentAccess replaces the department grants, leaving shared_with alone
	SetDepartmentAccess(ctx context.Context, id string, departmentIDs []string) (*docsystem.Folder, error)

	// Delete deletes a folder
	Delete(ctx context.Context, id string) error

	// List returns folders matching the query ordered by name (case-insensitive)
	List(ctx context.Context, q docsystem.FolderQuery) ([]docsystem.Folder, error)

	// ListDirectAccess returns folders owned by, shared with, or granted to the
	// user's department
	ListDirectAccess(ctx context.Context, userID, departmentID string) ([]docsystem.Folder, error)

	// GetParentLinks returns (id, parent_id) for each id that resolves
	GetParentLinks(ctx context.Context, ids []string) ([]docsystem.ParentLink, error)

	// CountChildren counts immediate subfolders
	CountChildren(ctx context.Context, id string) (int, error)
}
