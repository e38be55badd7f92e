package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxDocumentNameLength is the maximum length for original file names.
	MaxDocumentNameLength = 255

	// MaxTagNameLength is the maximum length for tag names.
	MaxTagNameLength = 50

	// MaxDepartmentNameLength is the maximum length for department names.
	MaxDepartmentNameLength = 100

	// MaxVendorNameLength is the maximum length for invoice vendor names.
	MaxVendorNameLength = 255

	// MaxUploadSize is the largest file accepted by the upload endpoint (50MB).
	MaxUploadSize = 50 << 20

	// MaxExtractSize caps how many bytes are read back for text extraction.
	MaxExtractSize = MaxUploadSize

	// MaxFolderDepth bounds the ancestor walk. A parent chain longer than this
	// is treated as corrupted data.
	MaxFolderDepth = 64

	// MinPasswordLength is the minimum password length for registration.
	MinPasswordLength = 6

	// ExtractionWorkers is the number of concurrent background extractions.
	ExtractionWorkers = 4
)

// Chatbot retrieval limits.
const (
	ChatMaxKeywords      = 8
	ChatUserResults      = 10
	ChatDocumentResults  = 10
	ChatContentResults   = 5
	ChatSnippetRadius    = 100
	MaxChatMessageLength = 2000
)
