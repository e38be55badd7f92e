package docsystem

import (
	"docvault/internal/domain/models/docsystem"
)

// buildTree nests folders under their parents. Input order is kept among
// siblings. A folder whose parent is not in the input is placed at the top
// level so nothing visible is lost.
func buildTree(folders []docsystem.FolderView) *docsystem.TreeNode {
	// First pass: create all folder nodes
	nodes := make(map[string]*docsystem.FolderTreeNode, len(folders))
	for _, f := range folders {
		nodes[f.ID] = &docsystem.FolderTreeNode{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.ParentID,
			OwnerID:   f.OwnerID,
			IsShared:  f.IsShared,
			Access:    f.FolderAccess,
			CreatedAt: f.CreatedAt,
			Folders:   []*docsystem.FolderTreeNode{},
		}
	}

	// Second pass: connect children to parents
	roots := make([]*docsystem.FolderTreeNode, 0)
	for _, f := range folders {
		node := nodes[f.ID]
		if f.ParentID != nil {
			if parent, ok := nodes[*f.ParentID]; ok {
				parent.Folders = append(parent.Folders, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return &docsystem.TreeNode{Folders: roots}
}
