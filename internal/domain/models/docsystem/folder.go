package docsystem

import (
	"time"
)

type Folder struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	ParentID         *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	OwnerID          string    `json:"owner_id" db:"owner_id"`
	SharedWith       []string  `json:"shared_with" db:"shared_with"`
	DepartmentAccess []string  `json:"department_access" db:"department_access"`
	IsShared         bool      `json:"is_shared" db:"is_shared"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top of the hierarchy.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// FolderView is a folder decorated with the caller's access flags.
type FolderView struct {
	Folder
	FolderAccess
}

// ParentLink is the minimal projection used by the ancestor walk.
type ParentLink struct {
	ID       string  `db:"id"`
	ParentID *string `db:"parent_id"`
}
