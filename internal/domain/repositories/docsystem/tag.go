package docsystem

import (
	"context"

	"docvault/internal/domain/models/docsystem"
)

// TagRepository defines data access operations for tags
type TagRepository interface {
	Create(ctx context.Context, tag *docsystem.Tag) error

	GetByID(ctx context.Context, id string) (*docsystem.Tag, error)

	Update(ctx context.Context, tag *docsystem.Tag) error

	Delete(ctx context.Context, id string) error

	// ListByOwner returns the owner's tags ordered by name
	ListByOwner(ctx context.Context, ownerID string) ([]docsystem.Tag, error)

	// CountOwned returns how many of ids are tags owned by ownerID
	CountOwned(ctx context.Context, ownerID string, ids []string) (int, error)
}
