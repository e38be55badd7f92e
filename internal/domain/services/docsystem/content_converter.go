package docsystem

import "context"

// ContentConverter turns uploaded bytes into searchable plain text.
// Each converter handles a set of file extensions (.pdf, .html, ...).
//
// Implementations should be stateless and thread-safe.
type ContentConverter interface {
	// Convert extracts text from input. An empty result is not an error.
	Convert(ctx context.Context, input []byte) (text string, err error)

	// SupportedExtensions returns file extensions this converter handles.
	// Extensions should include the leading dot (e.g., [".html", ".htm"]).
	SupportedExtensions() []string

	// Name returns a human-readable converter name for logging/debugging.
	Name() string
}

// ContentIndexer extracts and stores document text outside the request path.
type ContentIndexer interface {
	// Enqueue schedules extraction. It never blocks the caller on extraction work.
	Enqueue(documentID, storagePath, filename string)

	// Close waits for in-flight extraction to finish or ctx to expire.
	Close(ctx context.Context) error
}
