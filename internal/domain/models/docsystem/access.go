package docsystem

// Action is a document operation checked by the access resolver.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionRead, ActionWrite, ActionDelete:
		return true
	}
	return false
}

// FolderAccess is the resolver verdict for one folder.
//
//   - HasAccess: the folder appears in the caller's tree.
//   - CanViewContent: the caller may list the folder's documents and subfolders.
//   - HasSharedFiles: visible only because a document inside is shared with the caller.
type FolderAccess struct {
	HasAccess      bool `json:"has_access"`
	CanViewContent bool `json:"can_view_content"`
	HasSharedFiles bool `json:"has_shared_files"`
}

// Visibility maps folder IDs to the caller's access verdict. Folders absent
// from the map are invisible to the caller.
type Visibility map[string]FolderAccess

// IDs returns the visible folder IDs in no particular order.
func (v Visibility) IDs() []string {
	ids := make([]string, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}
	return ids
}

// ContentIDs returns the folders whose contents the caller may view.
func (v Visibility) ContentIDs() []string {
	ids := make([]string, 0, len(v))
	for id, a := range v {
		if a.CanViewContent {
			ids = append(ids, id)
		}
	}
	return ids
}
