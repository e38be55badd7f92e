package docsystem

import (
	"context"
	"io"
)

// FileStore persists uploaded bytes keyed by a generated path.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Open returns ErrNotFound when the key has no stored object
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete is idempotent
	Delete(ctx context.Context, key string) error

	// Name identifies the backend in logs
	Name() string
}
