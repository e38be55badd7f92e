package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	docsysRepo "docvault/internal/domain/repositories/docsystem"
	docsysSvc "docvault/internal/domain/services/docsystem"
)

type sharingService struct {
	folderRepo docsysRepo.FolderRepository
	docRepo    docsysRepo.DocumentRepository
	validator  *ResourceValidator
	logger     *slog.Logger
}

// NewSharingService creates the sharing mutation service
func NewSharingService(
	folderRepo docsysRepo.FolderRepository,
	docRepo docsysRepo.DocumentRepository,
	validator *ResourceValidator,
	logger *slog.Logger,
) docsysSvc.SharingService {
	return &sharingService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		validator:  validator,
		logger:     logger,
	}
}

// ShareDocument replaces the document's share list and permission lists.
// Read defaults to the share list; write and delete grant nothing unless given.
func (s *sharingService) ShareDocument(ctx context.Context, user models.CurrentUser, documentID string, req *docsysSvc.ShareDocumentRequest) (*docsystem.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !canManage(user, doc.OwnerID) {
		return nil, fmt.Errorf("share document %s: %w", documentID, domain.ErrPermissionDenied)
	}

	sharedWith := uniqueIDs(req.UserIDs)
	perms := docsystem.Permissions{
		Read:   sharedWith,
		Write:  []string{},
		Delete: []string{},
	}
	if p := req.Permissions; p != nil {
		if p.Read != nil {
			perms.Read = uniqueIDs(p.Read)
		}
		perms.Write = uniqueIDs(p.Write)
		perms.Delete = uniqueIDs(p.Delete)
	}

	referenced := uniqueIDs(append(append(append(append([]string{}, sharedWith...), perms.Read...), perms.Write...), perms.Delete...))
	if err := s.validator.ValidateUserIDs(ctx, referenced); err != nil {
		return nil, err
	}

	updated, err := s.docRepo.UpdateSharing(ctx, documentID, sharedWith, perms)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document sharing updated",
		"id", documentID,
		"shared_with", len(sharedWith),
		"is_shared", updated.IsShared,
		"by", user.ID,
	)
	return updated, nil
}

// ShareFolderWithUsers replaces the folder's user share list
func (s *sharingService) ShareFolderWithUsers(ctx context.Context, user models.CurrentUser, folderID string, userIDs []string) (*docsystem.Folder, error) {
	if _, err := s.manageableFolder(ctx, user, folderID); err != nil {
		return nil, err
	}

	ids := uniqueIDs(userIDs)
	if err := s.validator.ValidateUserIDs(ctx, ids); err != nil {
		return nil, err
	}

	updated, err := s.folderRepo.SetSharedWith(ctx, folderID, ids)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder sharing updated",
		"id", folderID,
		"shared_with", len(ids),
		"is_shared", updated.IsShared,
		"by", user.ID,
	)
	return updated, nil
}

// ShareFolderWithDepartments replaces the folder's department grants
func (s *sharingService) ShareFolderWithDepartments(ctx context.Context, user models.CurrentUser, folderID string, departmentIDs []string) (*docsystem.Folder, error) {
	if _, err := s.manageableFolder(ctx, user, folderID); err != nil {
		return nil, err
	}

	ids := uniqueIDs(departmentIDs)
	if err := s.validator.ValidateDepartmentIDs(ctx, ids); err != nil {
		return nil, err
	}

	updated, err := s.folderRepo.SetDepartmentAccess(ctx, folderID, ids)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder department access updated",
		"id", folderID,
		"departments", len(ids),
		"by", user.ID,
	)
	return updated, nil
}

func (s *sharingService) manageableFolder(ctx context.Context, user models.CurrentUser, folderID string) (*docsystem.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !canManage(user, folder.OwnerID) {
		return nil, fmt.Errorf("share folder %s: %w", folderID, domain.ErrPermissionDenied)
	}
	return folder, nil
}
