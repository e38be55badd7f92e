package docsystem

import (
	"context"

	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
)

// TagService manages the caller's own tags
type TagService interface {
	ListTags(ctx context.Context, user models.CurrentUser) ([]docsystem.Tag, error)
	CreateTag(ctx context.Context, user models.CurrentUser, req *TagRequest) (*docsystem.Tag, error)
	UpdateTag(ctx context.Context, user models.CurrentUser, id string, req *TagRequest) (*docsystem.Tag, error)
	DeleteTag(ctx context.Context, user models.CurrentUser, id string) error
}

type TagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}
