package docsystem

import (
	"slices"
	"time"
)

// Permissions holds the per-action grant lists of a document.
type Permissions struct {
	Read   []string `json:"read"`
	Write  []string `json:"write"`
	Delete []string `json:"delete"`
}

type Document struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`          // stored file name
	OriginalName string      `json:"original_name"` // name as uploaded
	MimeType     string      `json:"mime_type"`
	Size         int64       `json:"size"`
	Path         string      `json:"-"` // storage key, never exposed
	FolderID     *string     `json:"folder_id"`     // NULL = root level
	OwnerID      string      `json:"owner_id"`
	Tags         []string    `json:"tags"`
	IsStarred    bool        `json:"is_starred"`
	IsShared     bool        `json:"is_shared"`
	SharedWith   []string    `json:"shared_with"`
	Permissions  Permissions `json:"permissions"`
	Content      string      `json:"content,omitempty"` // extracted text, may be empty right after upload
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// GrantsRead reports whether the share list or the explicit read grants name
// the user. Stores mirror this for listing scopes and shared-folder lookups.
func (d *Document) GrantsRead(userID string) bool {
	return slices.Contains(d.SharedWith, userID) || slices.Contains(d.Permissions.Read, userID)
}

// ContentHit is a document whose extracted text matched a search, with a
// snippet around the first match.
type ContentHit struct {
	DocumentID   string  `json:"document_id"`
	OriginalName string  `json:"original_name"`
	FolderID     *string `json:"folder_id"`
	Snippet      string  `json:"snippet"`
}
