package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/repositories"
	docsysRepo "docvault/internal/domain/repositories/docsystem"
	docsysSvc "docvault/internal/domain/services/docsystem"
)

type tagService struct {
	tagRepo   docsysRepo.TagRepository
	docRepo   docsysRepo.DocumentRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewTagService creates a new tag service
func NewTagService(
	tagRepo docsysRepo.TagRepository,
	docRepo docsysRepo.DocumentRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) docsysSvc.TagService {
	return &tagService{
		tagRepo:   tagRepo,
		docRepo:   docRepo,
		txManager: txManager,
		logger:    logger,
	}
}

func validateTag(req *docsysSvc.TagRequest) error {
	return validationError(validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, config.MaxTagNameLength)),
		validation.Field(&req.Color, validation.Match(hexColor).Error("color must be #rrggbb")),
	))
}

func (s *tagService) ListTags(ctx context.Context, user models.CurrentUser) ([]docsystem.Tag, error) {
	return s.tagRepo.ListByOwner(ctx, user.ID)
}

// CreateTag creates a tag owned by the caller. Names are unique per owner.
func (s *tagService) CreateTag(ctx context.Context, user models.CurrentUser, req *docsysSvc.TagRequest) (*docsystem.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.TrimSpace(req.Color)
	if err := validateTag(req); err != nil {
		return nil, err
	}
	color := req.Color
	if color == "" {
		color = docsystem.DefaultTagColor
	}

	tag := &docsystem.Tag{Name: req.Name, Color: strings.ToLower(color), OwnerID: user.ID}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "id", tag.ID, "name", tag.Name, "owner_id", user.ID)
	return tag, nil
}

// UpdateTag renames or recolors one of the caller's tags. An empty color keeps the current one.
func (s *tagService) UpdateTag(ctx context.Context, user models.CurrentUser, id string, req *docsysSvc.TagRequest) (*docsystem.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.TrimSpace(req.Color)
	if err := validateTag(req); err != nil {
		return nil, err
	}

	tag, err := s.ownedTag(ctx, user, id)
	if err != nil {
		return nil, err
	}
	tag.Name = req.Name
	if req.Color != "" {
		tag.Color = strings.ToLower(req.Color)
	}
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag updated", "id", id, "name", tag.Name)
	return tag, nil
}

// DeleteTag detaches the tag from every document, then deletes it.
func (s *tagService) DeleteTag(ctx context.Context, user models.CurrentUser, id string) error {
	if _, err := s.ownedTag(ctx, user, id); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.RemoveTag(txCtx, id); err != nil {
			return fmt.Errorf("detach tag: %w", err)
		}
		return s.tagRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tag deleted", "id", id, "owner_id", user.ID)
	return nil
}

// ownedTag hides other users' tags behind NotFound.
func (s *tagService) ownedTag(ctx context.Context, user models.CurrentUser, id string) (*docsystem.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag.OwnerID != user.ID {
		return nil, domain.NotFound("tag", id)
	}
	return tag, nil
}
