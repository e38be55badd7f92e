package docsystem

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docvault/internal/config"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	docsysRepo "docvault/internal/domain/repositories/docsystem"
	"docvault/internal/domain/services"
	docsysSvc "docvault/internal/domain/services/docsystem"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo   docsysRepo.DocumentRepository
	resolver  services.AccessResolver
	composer  services.QueryComposer
	store     docsysSvc.FileStore
	indexer   docsysSvc.ContentIndexer
	validator *ResourceValidator
	logger    *slog.Logger
}

// NewDocumentService creates a new document service. indexer may be nil, in
// which case uploads are stored without extracted content.
func NewDocumentService(
	docRepo docsysRepo.DocumentRepository,
	resolver services.AccessResolver,
	composer services.QueryComposer,
	store docsysSvc.FileStore,
	indexer docsysSvc.ContentIndexer,
	validator *ResourceValidator,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	return &documentService{
		docRepo:   docRepo,
		resolver:  resolver,
		composer:  composer,
		store:     store,
		indexer:   indexer,
		validator: validator,
		logger:    logger,
	}
}

// storageKey builds the generated file name: <unixnano>-<random><ext>.
func storageKey(originalName string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), random, strings.ToLower(filepath.Ext(originalName)))
}

// uploadName strips any client-side directory. Names that reduce to the
// current directory or a separator become empty so validation rejects them.
func uploadName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

func (s *documentService) validateUpload(req *docsysSvc.UploadDocumentRequest) error {
	return validationError(validation.ValidateStruct(req,
		validation.Field(&req.OriginalName, validation.Required, validation.RuneLength(1, config.MaxDocumentNameLength)),
		validation.Field(&req.Size, validation.Min(int64(0)), validation.Max(int64(config.MaxUploadSize))),
		validation.Field(&req.Body, validation.NotNil),
	))
}

// UploadDocument stores the bytes, records the document and schedules text
// extraction. The stored object is removed again if the record cannot be written.
func (s *documentService) UploadDocument(ctx context.Context, user models.CurrentUser, req *docsysSvc.UploadDocumentRequest) (*docsystem.Document, error) {
	req.OriginalName = uploadName(req.OriginalName)
	if err := s.validateUpload(req); err != nil {
		return nil, err
	}

	folderID := normalizeOptionalID(req.FolderID)
	if folderID != nil {
		if _, err := s.resolver.RequireFolderContents(ctx, user, *folderID); err != nil {
			return nil, err
		}
	}

	tags := uniqueIDs(req.TagIDs)
	if err := s.validator.ValidateOwnedTags(ctx, user.ID, tags); err != nil {
		return nil, err
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	key := storageKey(req.OriginalName)
	if err := s.store.Save(ctx, key, req.Body, req.Size, mimeType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &docsystem.Document{
		Name:         key,
		OriginalName: req.OriginalName,
		MimeType:     mimeType,
		Size:         req.Size,
		Path:         key,
		FolderID:     folderID,
		OwnerID:      user.ID,
		Tags:         tags,
		SharedWith:   []string{},
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", "key", key, "error", delErr)
		}
		return nil, err
	}

	if s.indexer != nil {
		s.indexer.Enqueue(doc.ID, key, doc.OriginalName)
	}

	s.logger.Info("document uploaded",
		"id", doc.ID,
		"original_name", doc.OriginalName,
		"size", doc.Size,
		"folder_id", doc.FolderID,
		"owner_id", user.ID,
		"store", s.store.Name(),
	)
	return doc, nil
}

// ListDocuments lists documents for the requested mode
func (s *documentService) ListDocuments(ctx context.Context, user models.CurrentUser, opts services.DocumentListOptions) ([]docsystem.Document, error) {
	if opts.FolderSet {
		opts.FolderID = normalizeOptionalID(opts.FolderID)
	}
	q, err := s.composer.ComposeDocumentQuery(ctx, user, opts)
	if err != nil {
		return nil, err
	}
	docs, err := s.docRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *documentService) GetDocument(ctx context.Context, user models.CurrentUser, id string) (*docsystem.Document, error) {
	return s.resolver.RequireDocument(ctx, user, id, docsystem.ActionRead)
}

func (s *documentService) SetStarred(ctx context.Context, user models.CurrentUser, id string, starred bool) (*docsystem.Document, error) {
	if _, err := s.resolver.RequireDocument(ctx, user, id, docsystem.ActionRead); err != nil {
		return nil, err
	}
	doc, err := s.docRepo.SetStarred(ctx, id, starred)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("document starred", "id", id, "starred", starred, "user_id", user.ID)
	return doc, nil
}

// SetTags replaces the tag list. Only the caller's own tags may be attached.
func (s *documentService) SetTags(ctx context.Context, user models.CurrentUser, id string, tagIDs []string) (*docsystem.Document, error) {
	if _, err := s.resolver.RequireDocument(ctx, user, id, docsystem.ActionWrite); err != nil {
		return nil, err
	}
	tags := uniqueIDs(tagIDs)
	if err := s.validator.ValidateOwnedTags(ctx, user.ID, tags); err != nil {
		return nil, err
	}
	doc, err := s.docRepo.SetTags(ctx, id, tags)
	if err != nil {
		return nil, err
	}
	s.logger.Info("document tags updated", "id", id, "tag_count", len(tags))
	return doc, nil
}

func (s *documentService) OpenFile(ctx context.Context, user models.CurrentUser, id string) (*docsystem.Document, io.ReadCloser, error) {
	doc, err := s.resolver.RequireDocument(ctx, user, id, docsystem.ActionRead)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, doc.Path)
	if err != nil {
		return nil, nil, err
	}
	return doc, rc, nil
}

// DeleteDocument removes the record first, then the stored bytes. A storage
// failure leaves an orphaned object that is only logged.
func (s *documentService) DeleteDocument(ctx context.Context, user models.CurrentUser, id string) error {
	doc, err := s.resolver.RequireDocument(ctx, user, id, docsystem.ActionDelete)
	if err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.Path); err != nil {
		s.logger.Error("failed to delete stored file",
			"id", id,
			"key", doc.Path,
			"error", err,
		)
	}

	s.logger.Info("document deleted", "id", id, "original_name", doc.OriginalName, "deleted_by", user.ID)
	return nil
}
