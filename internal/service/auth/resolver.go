// Package auth decides what each user may see. The resolver computes folder
// and document access; the composer turns that into store predicates.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/services"
)

// FolderReader is the slice of the folder store the resolver reads.
type FolderReader interface {
	parentLinkLoader
	GetByID(ctx context.Context, id string) (*docsystem.Folder, error)
	List(ctx context.Context, q docsystem.FolderQuery) ([]docsystem.Folder, error)
	ListDirectAccess(ctx context.Context, userID, departmentID string) ([]docsystem.Folder, error)
}

// DocumentReader is the slice of the document store the resolver reads.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*docsystem.Document, error)
	ListFolderIDsSharedWith(ctx context.Context, userID string) ([]string, error)
}

// Resolver implements services.AccessResolver
type Resolver struct {
	folders  FolderReader
	docs     DocumentReader
	maxDepth int
	logger   *slog.Logger
}

// NewAccessResolver creates the access resolver
func NewAccessResolver(folders FolderReader, docs DocumentReader, logger *slog.Logger) *Resolver {
	return &Resolver{
		folders:  folders,
		docs:     docs,
		maxDepth: config.MaxFolderDepth,
		logger:   logger,
	}
}

var _ services.AccessResolver = (*Resolver)(nil)

// HasDirectFolderAccess applies the direct-access rule to a loaded folder.
func HasDirectFolderAccess(user models.CurrentUser, f *docsystem.Folder) bool {
	switch {
	case user.Privileged():
		return true
	case f.OwnerID == user.ID:
		return true
	case slices.Contains(f.SharedWith, user.ID):
		return true
	case user.DepartmentID != "" && slices.Contains(f.DepartmentAccess, user.DepartmentID):
		return true
	}
	return false
}

// ResolveFolderVisibility returns every folder visible to the user with its
// access flags. Privileged users see every folder with full access.
func (r *Resolver) ResolveFolderVisibility(ctx context.Context, user models.CurrentUser) (docsystem.Visibility, error) {
	if user.Privileged() {
		all, err := r.folders.List(ctx, docsystem.FolderQuery{All: true})
		if err != nil {
			return nil, fmt.Errorf("list folders: %w", err)
		}
		vis := make(docsystem.Visibility, len(all))
		for _, f := range all {
			vis[f.ID] = docsystem.FolderAccess{HasAccess: true, CanViewContent: true}
		}
		return vis, nil
	}

	var (
		direct    []docsystem.Folder
		sharedIDs []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		direct, err = r.folders.ListDirectAccess(gctx, user.ID, user.DepartmentID)
		if err != nil {
			return fmt.Errorf("list direct access folders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sharedIDs, err = r.docs.ListFolderIDsSharedWith(gctx, user.ID)
		if err != nil {
			return fmt.Errorf("list shared document folders: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	directSet := make(map[string]struct{}, len(direct))
	known := make(map[string]*string, len(direct))
	seeds := make([]string, 0, len(direct)+len(sharedIDs))
	for _, f := range direct {
		directSet[f.ID] = struct{}{}
		known[f.ID] = f.ParentID
		seeds = append(seeds, f.ID)
	}
	sharedSet := make(map[string]struct{}, len(sharedIDs))
	for _, id := range sharedIDs {
		sharedSet[id] = struct{}{}
		if _, ok := directSet[id]; !ok {
			seeds = append(seeds, id)
		}
	}

	links, err := loadAncestry(ctx, r.folders, known, seeds, r.maxDepth)
	if err != nil {
		r.logIntegrity(err, user)
		return nil, err
	}
	visible, err := ancestorClosure(links, seeds, r.maxDepth)
	if err != nil {
		r.logIntegrity(err, user)
		return nil, err
	}

	return classify(visible, directSet, sharedSet), nil
}

func (r *Resolver) logIntegrity(err error, user models.CurrentUser) {
	var ie *domain.IntegrityError
	if errors.As(err, &ie) {
		r.logger.Error("folder hierarchy is corrupted",
			"folder_id", ie.FolderID,
			"reason", ie.Reason,
			"user_id", user.ID,
		)
	}
}

// CanAccessFolderContents reports direct access to the folder.
func (r *Resolver) CanAccessFolderContents(ctx context.Context, user models.CurrentUser, folderID string) (bool, error) {
	f, err := r.folders.GetByID(ctx, folderID)
	if err != nil {
		return false, err
	}
	return HasDirectFolderAccess(user, f), nil
}

// RequireFolderContents loads the folder and fails with ErrAccessDenied
// when the user lacks direct access.
func (r *Resolver) RequireFolderContents(ctx context.Context, user models.CurrentUser, folderID string) (*docsystem.Folder, error) {
	f, err := r.folders.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !HasDirectFolderAccess(user, f) {
		return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrAccessDenied)
	}
	return f, nil
}

// CanAccessDocument reports whether the user may perform action on the document.
func (r *Resolver) CanAccessDocument(ctx context.Context, user models.CurrentUser, documentID string, action docsystem.Action) (bool, error) {
	if !action.Valid() {
		return false, domain.Validation("unknown action %q", action)
	}
	doc, err := r.docs.GetByID(ctx, documentID)
	if err != nil {
		return false, err
	}
	return r.documentAllows(ctx, user, doc, action)
}

// RequireDocument loads the document and fails with ErrAccessDenied when
// the action is not allowed.
func (r *Resolver) RequireDocument(ctx context.Context, user models.CurrentUser, documentID string, action docsystem.Action) (*docsystem.Document, error) {
	if !action.Valid() {
		return nil, domain.Validation("unknown action %q", action)
	}
	doc, err := r.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	ok, err := r.documentAllows(ctx, user, doc, action)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("document %s (%s): %w", documentID, action, domain.ErrAccessDenied)
	}
	return doc, nil
}

// documentAllows checks one action. Only reads cascade from the containing
// folder; writes and deletes need ownership or an explicit grant.
func (r *Resolver) documentAllows(ctx context.Context, user models.CurrentUser, doc *docsystem.Document, action docsystem.Action) (bool, error) {
	if user.Privileged() || doc.OwnerID == user.ID {
		return true, nil
	}

	switch action {
	case docsystem.ActionWrite:
		return slices.Contains(doc.Permissions.Write, user.ID), nil
	case docsystem.ActionDelete:
		return slices.Contains(doc.Permissions.Delete, user.ID), nil
	}

	if doc.GrantsRead(user.ID) {
		return true, nil
	}
	if doc.FolderID == nil {
		return false, nil
	}
	f, err := r.folders.GetByID(ctx, *doc.FolderID)
	if err != nil {
		return false, fmt.Errorf("load containing folder: %w", err)
	}
	return HasDirectFolderAccess(user, f), nil
}

// AccessibleFolderIDs returns the folders the user has direct access to.
func (r *Resolver) AccessibleFolderIDs(ctx context.Context, user models.CurrentUser) ([]string, error) {
	var (
		folders []docsystem.Folder
		err     error
	)
	if user.Privileged() {
		folders, err = r.folders.List(ctx, docsystem.FolderQuery{All: true})
	} else {
		folders, err = r.folders.ListDirectAccess(ctx, user.ID, user.DepartmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("list accessible folders: %w", err)
	}

	ids := make([]string, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}
	slices.Sort(ids)
	return ids, nil
}
