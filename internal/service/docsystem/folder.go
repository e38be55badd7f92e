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
	docsysRepo "docvault/internal/domain/repositories/docsystem"
	"docvault/internal/domain/services"
	docsysSvc "docvault/internal/domain/services/docsystem"
)

type folderService struct {
	folderRepo docsysRepo.FolderRepository
	docRepo    docsysRepo.DocumentRepository
	resolver   services.AccessResolver
	composer   services.QueryComposer
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo docsysRepo.FolderRepository,
	docRepo docsysRepo.DocumentRepository,
	resolver services.AccessResolver,
	composer services.QueryComposer,
	logger *slog.Logger,
) docsysSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		resolver:   resolver,
		composer:   composer,
		logger:     logger,
	}
}

// canManage reports whether user may mutate an entity owned by ownerID.
func canManage(user models.CurrentUser, ownerID string) bool {
	return user.Privileged() || user.ID == ownerID
}

func validateFolderName(name string) error {
	return validationError(validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.RuneLength(1, config.MaxFolderNameLength),
	))
}

// CreateFolder creates a folder owned by the caller. A parent must exist and
// the caller must be able to open it.
func (s *folderService) CreateFolder(ctx context.Context, user models.CurrentUser, req *docsysSvc.CreateFolderRequest) (*docsystem.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateFolderName(name); err != nil {
		return nil, err
	}

	parentID := normalizeOptionalID(req.ParentID)
	if parentID != nil {
		if _, err := s.resolver.RequireFolderContents(ctx, user, *parentID); err != nil {
			return nil, err
		}
	}

	folder := &docsystem.Folder{
		Name:     name,
		ParentID: parentID,
		OwnerID:  user.ID,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"owner_id", user.ID,
	)
	return folder, nil
}

// GetFolder returns folder metadata when the folder is in the caller's
// visibility map, including opaque ancestors.
func (s *folderService) GetFolder(ctx context.Context, user models.CurrentUser, id string) (*docsystem.FolderView, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vis, err := s.resolver.ResolveFolderVisibility(ctx, user)
	if err != nil {
		return nil, err
	}
	access, ok := vis[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrAccessDenied)
	}

	return &docsystem.FolderView{Folder: *folder, FolderAccess: access}, nil
}

// ListFolders lists every visible folder, optionally narrowed to one parent.
func (s *folderService) ListFolders(ctx context.Context, user models.CurrentUser, opts services.FolderListOptions) ([]docsystem.FolderView, error) {
	if opts.ParentSet {
		opts.ParentID = normalizeOptionalID(opts.ParentID)
	}
	q, vis, err := s.composer.ComposeFolderQuery(ctx, user, opts)
	if err != nil {
		return nil, err
	}
	folders, err := s.folderRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return decorate(folders, vis), nil
}

// GetContents lists the immediate subfolders and documents of a folder the
// caller has direct access to. Subfolders outside the caller's visibility
// map are left out.
func (s *folderService) GetContents(ctx context.Context, user models.CurrentUser, id string) (*docsysSvc.FolderContents, error) {
	folder, err := s.resolver.RequireFolderContents(ctx, user, id)
	if err != nil {
		return nil, err
	}

	q, vis, err := s.composer.ComposeFolderQuery(ctx, user, services.FolderListOptions{
		ParentSet: true,
		ParentID:  &folder.ID,
	})
	if err != nil {
		return nil, err
	}
	children, err := s.folderRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}

	// Direct access to the folder grants read on everything directly inside it.
	docs, err := s.docRepo.List(ctx, docsystem.DocumentQuery{
		FolderSet: true,
		FolderID:  &folder.ID,
		Sort:      docsystem.DefaultDocumentSort,
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return &docsysSvc.FolderContents{
		Folder:    &docsystem.FolderView{Folder: *folder, FolderAccess: vis[folder.ID]},
		Folders:   decorate(children, vis),
		Documents: docs,
	}, nil
}

// GetTree builds the nested tree of visible folders.
func (s *folderService) GetTree(ctx context.Context, user models.CurrentUser) (*docsystem.TreeNode, error) {
	q, vis, err := s.composer.ComposeFolderQuery(ctx, user, services.FolderListOptions{})
	if err != nil {
		return nil, err
	}
	folders, err := s.folderRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	tree := buildTree(decorate(folders, vis))

	s.logger.Debug("folder tree built",
		"user_id", user.ID,
		"folder_count", len(folders),
	)
	return tree, nil
}

// RenameFolder requires ownership or an elevated role
func (s *folderService) RenameFolder(ctx context.Context, user models.CurrentUser, id string, req *docsysSvc.UpdateFolderRequest) (*docsystem.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateFolderName(name); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(user, folder.OwnerID) {
		return nil, fmt.Errorf("rename folder %s: %w", id, domain.ErrPermissionDenied)
	}

	updated, err := s.folderRepo.UpdateName(ctx, id, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", id, "old_name", folder.Name, "name", updated.Name)
	return updated, nil
}

// DeleteFolder deletes an empty folder. The emptiness check and the delete
// are separate statements; a concurrent insert can slip between them and is
// then rejected by the foreign key instead.
func (s *folderService) DeleteFolder(ctx context.Context, user models.CurrentUser, id string) error {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(user, folder.OwnerID) {
		return fmt.Errorf("delete folder %s: %w", id, domain.ErrPermissionDenied)
	}

	children, err := s.folderRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("count subfolders: %w", err)
	}
	docs, err := s.docRepo.CountInFolder(ctx, id)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if children > 0 || docs > 0 {
		return &domain.ConflictError{
			Message:      "cannot delete folder with contents",
			ResourceType: "folder",
			ResourceID:   id,
		}
	}

	if err := s.folderRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", id, "name", folder.Name, "deleted_by", user.ID)
	return nil
}

// decorate pairs folders with their access flags. Folders missing from vis
// are dropped.
func decorate(folders []docsystem.Folder, vis docsystem.Visibility) []docsystem.FolderView {
	out := make([]docsystem.FolderView, 0, len(folders))
	for _, f := range folders {
		access, ok := vis[f.ID]
		if !ok {
			continue
		}
		out = append(out, docsystem.FolderView{Folder: f, FolderAccess: access})
	}
	return out
}
