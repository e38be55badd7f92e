package docsystem

import (
	"context"

	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/services"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a new folder owned by the caller
	CreateFolder(ctx context.Context, user models.CurrentUser, req *CreateFolderRequest) (*docsystem.Folder, error)

	// GetFolder returns a visible folder decorated with the caller's access flags
	GetFolder(ctx context.Context, user models.CurrentUser, id string) (*docsystem.FolderView, error)

	// ListFolders lists visible folders, optionally restricted to one parent
	ListFolders(ctx context.Context, user models.CurrentUser, opts services.FolderListOptions) ([]docsystem.FolderView, error)

	// GetContents lists immediate subfolders and documents; requires direct access
	GetContents(ctx context.Context, user models.CurrentUser, id string) (*FolderContents, error)

	// GetTree returns the nested tree of visible folders
	GetTree(ctx context.Context, user models.CurrentUser) (*docsystem.TreeNode, error)

	// RenameFolder requires ownership or an elevated role
	RenameFolder(ctx context.Context, user models.CurrentUser, id string, req *UpdateFolderRequest) (*docsystem.Folder, error)

	// DeleteFolder deletes an empty folder
	DeleteFolder(ctx context.Context, user models.CurrentUser, id string) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // null for root
}

// UpdateFolderRequest represents a folder rename request
type UpdateFolderRequest struct {
	Name string `json:"name"`
}

// FolderContents represents a folder with its immediate children
type FolderContents struct {
	Folder    *docsystem.FolderView  `json:"folder"`
	Folders   []docsystem.FolderView `json:"folders"`
	Documents []docsystem.Document   `json:"documents"`
}
