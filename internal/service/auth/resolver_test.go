package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/repository/memory"
)

type world struct {
	store    *memory.Store
	resolver *Resolver
	depts    map[string]string
	users    map[string]models.CurrentUser
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	w := &world{
		store:    store,
		resolver: NewAccessResolver(store.Folders(), store.Documents(), slog.New(slog.NewTextHandler(io.Discard, nil))),
		depts:    map[string]string{},
		users:    map[string]models.CurrentUser{},
	}
	for _, name := range []string{"hr", "finance", "it"} {
		d := &models.Department{Name: name, DisplayName: name, IsActive: true}
		require.NoError(t, store.Departments().Create(ctx, d))
		w.depts[name] = d.ID
	}
	for _, u := range []struct {
		key  string
		role models.Role
		dept string
	}{
		{"alice", models.RoleEmployee, "finance"},
		{"bob", models.RoleEmployee, "hr"},
		{"carol", models.RoleEmployee, "finance"},
		{"manager", models.RoleManager, "it"},
		{"admin", models.RoleAdmin, "it"},
	} {
		user := &models.User{Name: u.key, Email: u.key + "@company.com", PasswordHash: "x", Role: u.role, DepartmentID: w.depts[u.dept]}
		require.NoError(t, store.Users().Create(ctx, user))
		w.users[u.key] = user.Current()
	}
	return w
}

func (w *world) folder(t *testing.T, owner, name string, parent *docsystem.Folder) *docsystem.Folder {
	t.Helper()
	f := &docsystem.Folder{Name: name, OwnerID: w.users[owner].ID}
	if parent != nil {
		f.ParentID = &parent.ID
	}
	require.NoError(t, w.store.Folders().Create(context.Background(), f))
	return f
}

func (w *world) document(t *testing.T, owner, name string, folder *docsystem.Folder) *docsystem.Document {
	t.Helper()
	d := &docsystem.Document{Name: name, OriginalName: name, MimeType: "application/pdf", OwnerID: w.users[owner].ID}
	if folder != nil {
		d.FolderID = &folder.ID
	}
	require.NoError(t, w.store.Documents().Create(context.Background(), d))
	return d
}

func (w *world) share(t *testing.T, doc *docsystem.Document, users ...string) {
	t.Helper()
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, w.users[u].ID)
	}
	_, err := w.store.Documents().UpdateSharing(context.Background(), doc.ID, ids, docsystem.Permissions{Read: ids})
	require.NoError(t, err)
}

func TestResolveFolderVisibility_SharedFileInPrivateFolder(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	finance := w.folder(t, "alice", "Finance", nil)
	q1 := w.document(t, "alice", "Q1.pdf", finance)
	w.share(t, q1, "bob")

	vis, err := w.resolver.ResolveFolderVisibility(ctx, w.users["bob"])
	require.NoError(t, err)
	assert.Equal(t, docsystem.FolderAccess{HasAccess: true, CanViewContent: false, HasSharedFiles: true}, vis[finance.ID])

	ok, err := w.resolver.CanAccessDocument(ctx, w.users["bob"], q1.ID, docsystem.ActionRead)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = w.resolver.RequireFolderContents(ctx, w.users["bob"], finance.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestResolveFolderVisibility_AncestorsAreOpaque(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	root := w.folder(t, "alice", "Root", nil)
	mid := w.folder(t, "alice", "Mid", root)
	leaf := w.folder(t, "alice", "Leaf", mid)
	other := w.folder(t, "alice", "Other", nil)
	_, err := w.store.Folders().SetDepartmentAccess(ctx, leaf.ID, []string{w.depts["hr"]})
	require.NoError(t, err)

	vis, err := w.resolver.ResolveFolderVisibility(ctx, w.users["bob"])
	require.NoError(t, err)

	assert.Len(t, vis, 3)
	assert.Equal(t, docsystem.FolderAccess{HasAccess: true, CanViewContent: true}, vis[leaf.ID])
	assert.Equal(t, docsystem.FolderAccess{HasAccess: true}, vis[mid.ID])
	assert.Equal(t, docsystem.FolderAccess{HasAccess: true}, vis[root.ID])
	assert.NotContains(t, vis, other.ID)
}

func TestResolveFolderVisibility_DirectWinsOverSharedFiles(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	f := w.folder(t, "alice", "Team", nil)
	_, err := w.store.Folders().SetSharedWith(ctx, f.ID, []string{w.users["bob"].ID})
	require.NoError(t, err)
	w.share(t, w.document(t, "alice", "plan.pdf", f), "bob")

	vis, err := w.resolver.ResolveFolderVisibility(ctx, w.users["bob"])
	require.NoError(t, err)
	assert.Equal(t, docsystem.FolderAccess{HasAccess: true, CanViewContent: true}, vis[f.ID])
}

func TestResolveFolderVisibility_PrivilegedSeesEverything(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	var all []*docsystem.Folder
	root := w.folder(t, "alice", "Finance", nil)
	all = append(all, root, w.folder(t, "bob", "HR", nil), w.folder(t, "carol", "Nested", root))

	for _, role := range []string{"manager", "admin"} {
		t.Run(role, func(t *testing.T) {
			vis, err := w.resolver.ResolveFolderVisibility(ctx, w.users[role])
			require.NoError(t, err)
			require.Len(t, vis, len(all))
			for _, f := range all {
				assert.Equal(t, docsystem.FolderAccess{HasAccess: true, CanViewContent: true}, vis[f.ID], f.Name)
			}
		})
	}
}

func TestCanAccessFolderContents_MatchesVisibility(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	root := w.folder(t, "alice", "Root", nil)
	hr := w.folder(t, "alice", "HR", root)
	_, err := w.store.Folders().SetDepartmentAccess(ctx, hr.ID, []string{w.depts["hr"]})
	require.NoError(t, err)
	private := w.folder(t, "alice", "Private", root)
	w.share(t, w.document(t, "alice", "memo.txt", private), "bob")
	w.folder(t, "carol", "Carol", nil)

	all, err := w.store.Folders().List(ctx, docsystem.FolderQuery{All: true})
	require.NoError(t, err)

	for _, who := range []string{"alice", "bob", "carol", "manager"} {
		user := w.users[who]
		vis, err := w.resolver.ResolveFolderVisibility(ctx, user)
		require.NoError(t, err)
		for _, f := range all {
			can, err := w.resolver.CanAccessFolderContents(ctx, user, f.ID)
			require.NoError(t, err)
			assert.Equal(t, can, vis[f.ID].CanViewContent, "%s on %s", who, f.Name)
			if can {
				assert.True(t, vis[f.ID].HasAccess)
			}
		}
	}
}

func TestCanAccessFolderContents_NotFound(t *testing.T) {
	w := newWorld(t)
	_, err := w.resolver.CanAccessFolderContents(context.Background(), w.users["bob"], "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShareUnshareRoundTrip(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	f := w.folder(t, "alice", "Budget", nil)

	shared, err := w.store.Folders().SetSharedWith(ctx, f.ID, []string{w.users["bob"].ID})
	require.NoError(t, err)
	assert.True(t, shared.IsShared)

	vis, err := w.resolver.ResolveFolderVisibility(ctx, w.users["bob"])
	require.NoError(t, err)
	assert.Contains(t, vis, f.ID)

	unshared, err := w.store.Folders().SetSharedWith(ctx, f.ID, []string{})
	require.NoError(t, err)
	assert.False(t, unshared.IsShared)

	vis, err = w.resolver.ResolveFolderVisibility(ctx, w.users["bob"])
	require.NoError(t, err)
	assert.NotContains(t, vis, f.ID)

	vis, err = w.resolver.ResolveFolderVisibility(ctx, w.users["alice"])
	require.NoError(t, err)
	assert.True(t, vis[f.ID].CanViewContent)
}

func TestResolveFolderVisibility_CycleIsIntegrityError(t *testing.T) {
	w := newWorld(t)
	a, b := "folder-a", "folder-b"
	w.store.PutFolder(docsystem.Folder{ID: a, Name: "A", ParentID: &b, OwnerID: w.users["carol"].ID})
	w.store.PutFolder(docsystem.Folder{ID: b, Name: "B", ParentID: &a, OwnerID: w.users["alice"].ID})
	_, err := w.store.Folders().SetSharedWith(context.Background(), b, []string{w.users["bob"].ID})
	require.NoError(t, err)

	_, err = w.resolver.ResolveFolderVisibility(context.Background(), w.users["bob"])
	var ie *domain.IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, []string{a, b}, ie.FolderID)
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestResolveFolderVisibility_DanglingParent(t *testing.T) {
	w := newWorld(t)
	ghost := "ghost"
	w.store.PutFolder(docsystem.Folder{ID: "orphan", Name: "Orphan", ParentID: &ghost, OwnerID: w.users["bob"].ID})

	_, err := w.resolver.ResolveFolderVisibility(context.Background(), w.users["bob"])
	var ie *domain.IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "orphan", ie.FolderID)
}

func TestResolveFolderVisibility_DepthBound(t *testing.T) {
	w := newWorld(t)
	w.resolver.maxDepth = 5

	var parent *docsystem.Folder
	for i := range 8 {
		parent = w.folder(t, "alice", fmt.Sprintf("L%d", i), parent)
	}
	_, err := w.store.Folders().SetSharedWith(context.Background(), parent.ID, []string{w.users["bob"].ID})
	require.NoError(t, err)

	_, err = w.resolver.ResolveFolderVisibility(context.Background(), w.users["bob"])
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestCanAccessDocument_Actions(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	dept := w.folder(t, "alice", "Finance Shared", nil)
	_, err := w.store.Folders().SetDepartmentAccess(ctx, dept.ID, []string{w.depts["finance"]})
	require.NoError(t, err)
	inDept := w.document(t, "alice", "ledger.pdf", dept)

	granted := w.document(t, "alice", "contract.pdf", nil)
	bob := w.users["bob"].ID
	_, err = w.store.Documents().UpdateSharing(ctx, granted.ID, []string{bob},
		docsystem.Permissions{Read: []string{bob}, Write: []string{bob}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		user   string
		doc    *docsystem.Document
		action docsystem.Action
		want   bool
	}{
		{"owner deletes", "alice", inDept, docsystem.ActionDelete, true},
		{"department reads via folder", "carol", inDept, docsystem.ActionRead, true},
		{"department cannot write", "carol", inDept, docsystem.ActionWrite, false},
		{"outsider cannot read", "bob", inDept, docsystem.ActionRead, false},
		{"explicit write grant", "bob", granted, docsystem.ActionWrite, true},
		{"no delete grant", "bob", granted, docsystem.ActionDelete, false},
		{"manager bypass", "manager", granted, docsystem.ActionDelete, true},
		{"root document not shared", "carol", granted, docsystem.ActionRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := w.resolver.CanAccessDocument(ctx, w.users[tt.user], tt.doc.ID, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireDocument(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	doc := w.document(t, "alice", "secret.pdf", nil)

	_, err := w.resolver.RequireDocument(ctx, w.users["bob"], doc.ID, docsystem.ActionRead)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = w.resolver.RequireDocument(ctx, w.users["bob"], "missing", docsystem.ActionRead)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = w.resolver.RequireDocument(ctx, w.users["alice"], doc.ID, "rename")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := w.resolver.RequireDocument(ctx, w.users["alice"], doc.ID, docsystem.ActionRead)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
}

func TestAccessibleFolderIDs_DirectOnly(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	root := w.folder(t, "alice", "Root", nil)
	child := w.folder(t, "alice", "Child", root)
	_, err := w.store.Folders().SetSharedWith(ctx, child.ID, []string{w.users["bob"].ID})
	require.NoError(t, err)

	ids, err := w.resolver.AccessibleFolderIDs(ctx, w.users["bob"])
	require.NoError(t, err)
	assert.Equal(t, []string{child.ID}, ids)
}
