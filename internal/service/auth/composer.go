package auth

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/services"
)

// InvoiceDocumentLister returns the documents referenced by a user's invoices.
type InvoiceDocumentLister interface {
	ListDocumentIDs(ctx context.Context, ownerID string) ([]string, error)
}

// Composer implements services.QueryComposer
type Composer struct {
	resolver services.AccessResolver
	invoices InvoiceDocumentLister
	logger   *slog.Logger
}

// NewQueryComposer creates a query composer over the resolver
func NewQueryComposer(resolver services.AccessResolver, invoices InvoiceDocumentLister, logger *slog.Logger) *Composer {
	return &Composer{
		resolver: resolver,
		invoices: invoices,
		logger:   logger,
	}
}

var _ services.QueryComposer = (*Composer)(nil)

// DocumentScope returns owner OR accessible folder OR shared-with for
// regular users and nil (no restriction) for privileged ones.
func (c *Composer) DocumentScope(ctx context.Context, user models.CurrentUser) (*docsystem.DocumentScope, error) {
	if user.Privileged() {
		return nil, nil
	}
	ids, err := c.resolver.AccessibleFolderIDs(ctx, user)
	if err != nil {
		return nil, err
	}
	return &docsystem.DocumentScope{
		OwnerID:    user.ID,
		FolderIDs:  ids,
		SharedWith: user.ID,
	}, nil
}

// ComposeDocumentQuery builds the listing predicate for one of the modes
// (my drive, shared with me, invoices, role-wide) plus refinements.
func (c *Composer) ComposeDocumentQuery(ctx context.Context, user models.CurrentUser, opts services.DocumentListOptions) (docsystem.DocumentQuery, error) {
	sort, err := ParseSort(opts.Sort)
	if err != nil {
		return docsystem.DocumentQuery{}, err
	}
	q := docsystem.DocumentQuery{Sort: sort}

	switch {
	case opts.MyDrive:
		q.OwnerID = user.ID
		q.FolderSet = true
		q.FolderID = nil
	case opts.Shared:
		q.SharedWith = user.ID
	case opts.Invoices:
		ids, err := c.invoices.ListDocumentIDs(ctx, user.ID)
		if err != nil {
			return docsystem.DocumentQuery{}, fmt.Errorf("list invoice documents: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		q.IDs = ids
		if q.Scope, err = c.DocumentScope(ctx, user); err != nil {
			return docsystem.DocumentQuery{}, err
		}
	default:
		if q.Scope, err = c.DocumentScope(ctx, user); err != nil {
			return docsystem.DocumentQuery{}, err
		}
	}

	// my drive is pinned to the root level
	if opts.FolderSet && !opts.MyDrive {
		q.FolderSet = true
		q.FolderID = opts.FolderID
	}
	if opts.Starred {
		starred := true
		q.Starred = &starred
	}
	q.NameQuery = strings.TrimSpace(opts.Search)
	q.TagID = opts.TagID

	return q, nil
}

// ComposeFolderQuery restricts a folder listing to the caller's visible set
// and the requested parent. The visibility map is returned for decoration.
func (c *Composer) ComposeFolderQuery(ctx context.Context, user models.CurrentUser, opts services.FolderListOptions) (docsystem.FolderQuery, docsystem.Visibility, error) {
	vis, err := c.resolver.ResolveFolderVisibility(ctx, user)
	if err != nil {
		return docsystem.FolderQuery{}, nil, err
	}

	q := docsystem.FolderQuery{
		ParentSet: opts.ParentSet,
		ParentID:  opts.ParentID,
	}
	if user.Privileged() {
		q.All = true
		return q, vis, nil
	}

	q.IDs = vis.IDs()
	slices.Sort(q.IDs)
	return q, vis, nil
}

// ParseSort reads "field" or "-field". Empty input yields the default
// (newest first).
func ParseSort(s string) (docsystem.DocumentSort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return docsystem.DefaultDocumentSort, nil
	}
	sort := docsystem.DocumentSort{Field: s}
	if strings.HasPrefix(s, "-") {
		sort = docsystem.DocumentSort{Field: s[1:], Desc: true}
	}
	switch sort.Field {
	case "created_at", "name", "size":
		return sort, nil
	}
	return docsystem.DocumentSort{}, domain.Validation("unsupported sort field %q", sort.Field)
}
