package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"docvault/internal/domain"
	"docvault/internal/domain/models/docsystem"
	docsysRepo "docvault/internal/domain/repositories/docsystem"
)

// ---------------------------------------------------------------------------
// Folders
// ---------------------------------------------------------------------------

type FolderRepository struct{ s *Store }

var _ docsysRepo.FolderRepository = (*FolderRepository)(nil)

func (r *FolderRepository) Create(ctx context.Context, folder *docsystem.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if folder.ParentID != nil {
		if _, ok := r.s.folders[*folder.ParentID]; !ok {
			return domain.NotFound("folder", *folder.ParentID)
		}
	}
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	folder.SharedWith = cloneIDs(folder.SharedWith)
	folder.DepartmentAccess = cloneIDs(folder.DepartmentAccess)
	folder.IsShared = len(folder.SharedWith) > 0
	folder.CreatedAt = r.s.stamp()
	folder.UpdatedAt = folder.CreatedAt
	r.s.folders[folder.ID] = cloneFolder(*folder)
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*docsystem.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.folders[id]
	if !ok {
		return nil, domain.NotFound("folder", id)
	}
	f = cloneFolder(f)
	return &f, nil
}

func (r *FolderRepository) mutate(id string, fn func(f *docsystem.Folder)) (*docsystem.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok {
		return nil, domain.NotFound("folder", id)
	}
	fn(&f)
	f.UpdatedAt = r.s.stamp()
	r.s.folders[id] = cloneFolder(f)
	out := cloneFolder(f)
	return &out, nil
}

func (r *FolderRepository) UpdateName(ctx context.Context, id, name string) (*docsystem.Folder, error) {
	return r.mutate(id, func(f *docsystem.Folder) { f.Name = name })
}

func (r *FolderRepository) SetSharedWith(ctx context.Context, id string, userIDs []string) (*docsystem.Folder, error) {
	return r.mutate(id, func(f *docsystem.Folder) {
		f.SharedWith = cloneIDs(userIDs)
		f.IsShared = len(f.SharedWith) > 0
	})
}

func (r *FolderRepository) SetDepartmentAccess(ctx context.Context, id string, departmentIDs []string) (*docsystem.Folder, error) {
	return r.mutate(id, func(f *docsystem.Folder) { f.DepartmentAccess = cloneIDs(departmentIDs) })
}

func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.folders[id]; !ok {
		return domain.NotFound("folder", id)
	}
	for _, f := range r.s.folders {
		if f.ParentID != nil && *f.ParentID == id {
			return &domain.ConflictError{Message: "folder is not empty", ResourceType: "folder", ResourceID: id}
		}
	}
	for _, d := range r.s.documents {
		if d.FolderID != nil && *d.FolderID == id {
			return &domain.ConflictError{Message: "folder is not empty", ResourceType: "folder", ResourceID: id}
		}
	}
	delete(r.s.folders, id)
	return nil
}

func (r *FolderRepository) List(ctx context.Context, q docsystem.FolderQuery) ([]docsystem.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	folders := []docsystem.Folder{}
	for _, f := range r.s.folders {
		if !q.All && !slices.Contains(q.IDs, f.ID) {
			continue
		}
		if q.ParentSet && !samePtr(f.ParentID, q.ParentID) {
			continue
		}
		folders = append(folders, cloneFolder(f))
	}
	slices.SortFunc(folders, func(a, b docsystem.Folder) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			strings.Compare(a.ID, b.ID),
		)
	})
	return folders, nil
}

func (r *FolderRepository) ListDirectAccess(ctx context.Context, userID, departmentID string) ([]docsystem.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	folders := []docsystem.Folder{}
	for _, f := range r.s.folders {
		if f.OwnerID == userID || slices.Contains(f.SharedWith, userID) ||
			(departmentID != "" && slices.Contains(f.DepartmentAccess, departmentID)) {
			folders = append(folders, cloneFolder(f))
		}
	}
	return folders, nil
}

func (r *FolderRepository) GetParentLinks(ctx context.Context, ids []string) ([]docsystem.ParentLink, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	links := []docsystem.ParentLink{}
	for _, id := range ids {
		if f, ok := r.s.folders[id]; ok {
			links = append(links, docsystem.ParentLink{ID: f.ID, ParentID: cloneFolder(f).ParentID})
		}
	}
	return links, nil
}

func (r *FolderRepository) CountChildren(ctx context.Context, id string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, f := range r.s.folders {
		if f.ParentID != nil && *f.ParentID == id {
			n++
		}
	}
	return n, nil
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

type DocumentRepository struct{ s *Store }

var _ docsysRepo.DocumentRepository = (*DocumentRepository)(nil)

func (r *DocumentRepository) Create(ctx context.Context, doc *docsystem.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if doc.FolderID != nil {
		if _, ok := r.s.folders[*doc.FolderID]; !ok {
			return domain.NotFound("folder", *doc.FolderID)
		}
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	*doc = cloneDocument(*doc, true)
	doc.IsShared = len(doc.SharedWith) > 0
	doc.CreatedAt = r.s.stamp()
	doc.UpdatedAt = doc.CreatedAt
	r.s.documents[doc.ID] = cloneDocument(*doc, true)
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*docsystem.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.documents[id]
	if !ok {
		return nil, domain.NotFound("document", id)
	}
	d = cloneDocument(d, true)
	return &d, nil
}

func (r *DocumentRepository) List(ctx context.Context, q docsystem.DocumentQuery) ([]docsystem.Document, error) {
	return r.list(q, false), nil
}

func (r *DocumentRepository) SearchContent(ctx context.Context, q docsystem.DocumentQuery) ([]docsystem.Document, error) {
	return r.list(q, true), nil
}

func (r *DocumentRepository) list(q docsystem.DocumentQuery, withContent bool) []docsystem.Document {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	docs := []docsystem.Document{}
	for _, d := range r.s.documents {
		if matchDocument(d, q) {
			docs = append(docs, cloneDocument(d, withContent))
		}
	}

	sort := q.Sort
	if sort.Field != "name" && sort.Field != "size" && sort.Field != "created_at" {
		sort = docsystem.DefaultDocumentSort
	}
	slices.SortFunc(docs, func(a, b docsystem.Document) int {
		var c int
		switch sort.Field {
		case "name":
			c = strings.Compare(strings.ToLower(a.OriginalName), strings.ToLower(b.OriginalName))
		case "size":
			c = cmp.Compare(a.Size, b.Size)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		c = cmp.Or(c, strings.Compare(a.ID, b.ID))
		if sort.Desc {
			return -c
		}
		return c
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

func matchDocument(d docsystem.Document, q docsystem.DocumentQuery) bool {
	if s := q.Scope; s != nil {
		in := (s.OwnerID != "" && d.OwnerID == s.OwnerID) ||
			(d.FolderID != nil && slices.Contains(s.FolderIDs, *d.FolderID)) ||
			(s.SharedWith != "" && d.GrantsRead(s.SharedWith))
		if !in {
			return false
		}
	}
	if q.OwnerID != "" && d.OwnerID != q.OwnerID {
		return false
	}
	if q.SharedWith != "" && !slices.Contains(d.SharedWith, q.SharedWith) {
		return false
	}
	if q.FolderSet && !samePtr(d.FolderID, q.FolderID) {
		return false
	}
	if q.IDs != nil && !slices.Contains(q.IDs, d.ID) {
		return false
	}
	if q.Starred != nil && d.IsStarred != *q.Starred {
		return false
	}
	if q.NameQuery != "" && !containsFold(d.OriginalName, q.NameQuery) {
		return false
	}
	if q.TagID != "" && !slices.Contains(d.Tags, q.TagID) {
		return false
	}
	if len(q.ContentTerms) > 0 && !slices.ContainsFunc(q.ContentTerms, func(t string) bool {
		return containsFold(d.Content, t)
	}) {
		return false
	}
	if len(q.MetadataTerms) > 0 && !slices.ContainsFunc(q.MetadataTerms, func(t string) bool {
		return containsFold(d.OriginalName, t) || containsFold(d.MimeType, t)
	}) {
		return false
	}
	return true
}

func (r *DocumentRepository) mutate(id string, fn func(d *docsystem.Document)) (*docsystem.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.documents[id]
	if !ok {
		return nil, domain.NotFound("document", id)
	}
	fn(&d)
	d.UpdatedAt = r.s.stamp()
	r.s.documents[id] = cloneDocument(d, true)
	out := cloneDocument(d, false)
	return &out, nil
}

func (r *DocumentRepository) SetStarred(ctx context.Context, id string, starred bool) (*docsystem.Document, error) {
	return r.mutate(id, func(d *docsystem.Document) { d.IsStarred = starred })
}

func (r *DocumentRepository) UpdateSharing(ctx context.Context, id string, sharedWith []string, perms docsystem.Permissions) (*docsystem.Document, error) {
	return r.mutate(id, func(d *docsystem.Document) {
		d.SharedWith = cloneIDs(sharedWith)
		d.IsShared = len(d.SharedWith) > 0
		d.Permissions = perms
	})
}

func (r *DocumentRepository) SetTags(ctx context.Context, id string, tagIDs []string) (*docsystem.Document, error) {
	return r.mutate(id, func(d *docsystem.Document) { d.Tags = cloneIDs(tagIDs) })
}

func (r *DocumentRepository) UpdateContent(ctx context.Context, id, content string) error {
	_, err := r.mutate(id, func(d *docsystem.Document) { d.Content = content })
	return err
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.documents[id]; !ok {
		return domain.NotFound("document", id)
	}
	delete(r.s.documents, id)
	for iid, inv := range r.s.invoices {
		if inv.DocumentID == id {
			delete(r.s.invoices, iid)
		}
	}
	return nil
}

func (r *DocumentRepository) ListFolderIDsSharedWith(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := []string{}
	for _, d := range r.s.documents {
		if d.FolderID != nil && d.GrantsRead(userID) && !slices.Contains(ids, *d.FolderID) {
			ids = append(ids, *d.FolderID)
		}
	}
	return ids, nil
}

func (r *DocumentRepository) CountInFolder(ctx context.Context, folderID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, d := range r.s.documents {
		if d.FolderID != nil && *d.FolderID == folderID {
			n++
		}
	}
	return n, nil
}

func (r *DocumentRepository) RemoveTag(ctx context.Context, tagID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, d := range r.s.documents {
		if i := slices.Index(d.Tags, tagID); i >= 0 {
			d.Tags = slices.Delete(cloneIDs(d.Tags), i, i+1)
			r.s.documents[id] = d
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tags
// ---------------------------------------------------------------------------

type TagRepository struct{ s *Store }

var _ docsysRepo.TagRepository = (*TagRepository)(nil)

func (r *TagRepository) duplicate(tag *docsystem.Tag) error {
	for _, t := range r.s.tags {
		if t.ID != tag.ID && t.OwnerID == tag.OwnerID && t.Name == tag.Name {
			return &domain.ConflictError{Message: "tag '" + tag.Name + "' already exists", ResourceType: "tag", ResourceID: t.ID}
		}
	}
	return nil
}

func (r *TagRepository) Create(ctx context.Context, tag *docsystem.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.duplicate(tag); err != nil {
		return err
	}
	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}
	tag.CreatedAt = r.s.stamp()
	tag.UpdatedAt = tag.CreatedAt
	r.s.tags[tag.ID] = *tag
	return nil
}

func (r *TagRepository) GetByID(ctx context.Context, id string) (*docsystem.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tags[id]
	if !ok {
		return nil, domain.NotFound("tag", id)
	}
	return &t, nil
}

func (r *TagRepository) Update(ctx context.Context, tag *docsystem.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tags[tag.ID]
	if !ok {
		return domain.NotFound("tag", tag.ID)
	}
	if err := r.duplicate(tag); err != nil {
		return err
	}
	existing.Name = tag.Name
	existing.Color = tag.Color
	existing.UpdatedAt = r.s.stamp()
	r.s.tags[tag.ID] = existing
	*tag = existing
	return nil
}

func (r *TagRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tags[id]; !ok {
		return domain.NotFound("tag", id)
	}
	delete(r.s.tags, id)
	return nil
}

func (r *TagRepository) ListByOwner(ctx context.Context, ownerID string) ([]docsystem.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tags := []docsystem.Tag{}
	for _, t := range r.s.tags {
		if t.OwnerID == ownerID {
			tags = append(tags, t)
		}
	}
	slices.SortFunc(tags, func(a, b docsystem.Tag) int { return strings.Compare(a.Name, b.Name) })
	return tags, nil
}

func (r *TagRepository) CountOwned(ctx context.Context, ownerID string, ids []string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, id := range ids {
		if t, ok := r.s.tags[id]; ok && t.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

type InvoiceRepository struct{ s *Store }

var _ docsysRepo.InvoiceRepository = (*InvoiceRepository)(nil)

func (r *InvoiceRepository) withDocumentName(inv docsystem.InvoiceRecord) docsystem.InvoiceRecord {
	if d, ok := r.s.documents[inv.DocumentID]; ok {
		inv.DocumentName = d.OriginalName
	}
	return inv
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *docsystem.InvoiceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.documents[inv.DocumentID]; !ok {
		return domain.NotFound("document", inv.DocumentID)
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	inv.CreatedAt = r.s.stamp()
	inv.UpdatedAt = inv.CreatedAt
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*docsystem.InvoiceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, domain.NotFound("invoice", id)
	}
	inv = r.withDocumentName(inv)
	return &inv, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *docsystem.InvoiceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.invoices[inv.ID]
	if !ok {
		return domain.NotFound("invoice", inv.ID)
	}
	if _, ok := r.s.documents[inv.DocumentID]; !ok {
		return domain.NotFound("document", inv.DocumentID)
	}
	inv.OwnerID = existing.OwnerID
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = r.s.stamp()
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[id]; !ok {
		return domain.NotFound("invoice", id)
	}
	delete(r.s.invoices, id)
	return nil
}

func (r *InvoiceRepository) List(ctx context.Context, f docsystem.InvoiceFilter) ([]docsystem.InvoiceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []docsystem.InvoiceRecord{}
	for _, inv := range r.s.invoices {
		switch {
		case f.OwnerID != "" && inv.OwnerID != f.OwnerID,
			f.StartDate != nil && inv.InvoiceDate.Before(*f.StartDate),
			f.EndDate != nil && inv.InvoiceDate.After(*f.EndDate),
			f.VendorName != "" && !containsFold(inv.VendorName, f.VendorName),
			f.MinValue != nil && inv.InvoiceValue < *f.MinValue,
			f.MaxValue != nil && inv.InvoiceValue > *f.MaxValue,
			f.DocumentIDs != nil && !slices.Contains(f.DocumentIDs, inv.DocumentID):
			continue
		}
		out = append(out, r.withDocumentName(inv))
	}
	slices.SortFunc(out, func(a, b docsystem.InvoiceRecord) int {
		return cmp.Or(b.InvoiceDate.Compare(a.InvoiceDate), strings.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r *InvoiceRepository) ListDocumentIDs(ctx context.Context, ownerID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := []string{}
	for _, inv := range r.s.invoices {
		if inv.OwnerID == ownerID && !slices.Contains(ids, inv.DocumentID) {
			ids = append(ids, inv.DocumentID)
		}
	}
	return ids, nil
}
