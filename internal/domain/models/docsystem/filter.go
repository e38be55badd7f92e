package docsystem

// DocumentSort is a whitelisted (column, direction) pair.
type DocumentSort struct {
	Field string // created_at, name, size
	Desc  bool
}

var DefaultDocumentSort = DocumentSort{Field: "created_at", Desc: true}

// DocumentScope is the role-wide access disjunction: owned, inside one of
// FolderIDs, or granted to SharedWith through shared_with or the read
// permission list. Empty members are skipped.
type DocumentScope struct {
	OwnerID    string
	FolderIDs  []string
	SharedWith string
}

// DocumentQuery is the store-level predicate produced by the query composer.
// All set members are ANDed together.
type DocumentQuery struct {
	// Scope restricts to the access disjunction when non-nil
	Scope *DocumentScope

	OwnerID    string // exact owner
	SharedWith string // user appears in shared_with

	FolderSet bool    // apply FolderID (nil = root level)
	FolderID  *string // only read when FolderSet

	IDs       []string // restrict to these IDs when non-nil
	Starred   *bool
	NameQuery string // case-insensitive substring of original_name
	TagID     string

	// Any of these case-insensitive substrings in the extracted content
	ContentTerms []string
	// Any of these substrings in original_name or mime_type
	MetadataTerms []string

	Sort  DocumentSort
	Limit int
}

// FolderQuery filters folder listings. All=true disables the ID restriction.
type FolderQuery struct {
	All       bool
	IDs       []string
	ParentSet bool
	ParentID  *string
}
