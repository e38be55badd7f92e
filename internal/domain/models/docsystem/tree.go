package docsystem

import "time"

// TreeNode represents the root of the visible folder tree
type TreeNode struct {
	Folders []*FolderTreeNode `json:"folders"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parent_id"`
	OwnerID   string            `json:"owner_id"`
	IsShared  bool              `json:"is_shared"`
	Access    FolderAccess      `json:"access"`
	CreatedAt time.Time         `json:"created_at"`
	Folders   []*FolderTreeNode `json:"folders"` // Pointers for proper nesting
}
