package docsystem

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/domain"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/services"
	docsysSvc "docvault/internal/domain/services/docsystem"
)

func TestCreateFolder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	finance := e.folder(t, "alice", "  Finance ", nil)
	assert.Equal(t, "Finance", finance.Name)
	assert.Nil(t, finance.ParentID)

	empty := ""
	root, err := e.folders.CreateFolder(ctx, e.users["alice"], &docsysSvc.CreateFolderRequest{Name: "Root", ParentID: &empty})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID, "empty parent means root")

	tests := []struct {
		name    string
		user    string
		req     *docsysSvc.CreateFolderRequest
		wantErr error
	}{
		{"blank name", "alice", &docsysSvc.CreateFolderRequest{Name: "   "}, domain.ErrValidation},
		{"name too long", "alice", &docsysSvc.CreateFolderRequest{Name: strings.Repeat("x", 256)}, domain.ErrValidation},
		{"parent without access", "bob", &docsysSvc.CreateFolderRequest{Name: "Sub", ParentID: &finance.ID}, domain.ErrAccessDenied},
		{"missing parent", "alice", &docsysSvc.CreateFolderRequest{Name: "Sub", ParentID: strPtr("8f7c6a52-0000-4000-8000-000000000000")}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.folders.CreateFolder(ctx, e.users[tt.user], tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func strPtr(s string) *string { return &s }

func TestSharedFileScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bob := e.users["bob"]

	finance := e.folder(t, "alice", "Finance", nil)
	q1 := e.upload(t, "alice", "Q1.pdf", "revenue", finance)
	_, err := e.sharing.ShareDocument(ctx, e.users["alice"], q1.ID, &docsysSvc.ShareDocumentRequest{UserIDs: e.ids("bob")})
	require.NoError(t, err)

	folders, err := e.folders.ListFolders(ctx, bob, services.FolderListOptions{})
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Finance", folders[0].Name)
	assert.Equal(t, docsystem.FolderAccess{HasAccess: true, CanViewContent: false, HasSharedFiles: true}, folders[0].FolderAccess)

	docs, err := e.docs.ListDocuments(ctx, bob, services.DocumentListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Q1.pdf", docs[0].OriginalName)

	_, err = e.folders.GetContents(ctx, bob, finance.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	view, err := e.folders.GetFolder(ctx, bob, finance.ID)
	require.NoError(t, err)
	assert.True(t, view.HasSharedFiles)
}

func TestReadGrantWithoutShareList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bob := e.users["bob"]

	payroll := e.folder(t, "alice", "Payroll", nil)
	doc := e.upload(t, "alice", "march.pdf", "salaries", payroll)
	_, err := e.sharing.ShareDocument(ctx, e.users["alice"], doc.ID, &docsysSvc.ShareDocumentRequest{
		UserIDs:     e.ids("carol"),
		Permissions: &docsysSvc.PermissionsInput{Read: e.ids("bob")},
	})
	require.NoError(t, err)

	_, err = e.docs.GetDocument(ctx, bob, doc.ID)
	require.NoError(t, err)

	docs, err := e.docs.ListDocuments(ctx, bob, services.DocumentListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1, "listing agrees with the read check")
	assert.Equal(t, doc.ID, docs[0].ID)

	folders, err := e.folders.ListFolders(ctx, bob, services.FolderListOptions{})
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, docsystem.FolderAccess{HasAccess: true, CanViewContent: false, HasSharedFiles: true}, folders[0].FolderAccess)

	assert.ErrorIs(t, e.docs.DeleteDocument(ctx, bob, doc.ID), domain.ErrAccessDenied)
}

func TestGetFolder_Invisible(t *testing.T) {
	e := newEnv(t)
	private := e.folder(t, "alice", "Private", nil)

	_, err := e.folders.GetFolder(context.Background(), e.users["bob"], private.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = e.folders.GetFolder(context.Background(), e.users["bob"], "6b1f3a2e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFolders_ManagerSeesEverything(t *testing.T) {
	e := newEnv(t)
	e.folder(t, "alice", "beta", nil)
	a := e.folder(t, "bob", "Alpha", nil)
	e.folder(t, "bob", "child", a)

	all, err := e.folders.ListFolders(context.Background(), e.users["manager"], services.FolderListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, f := range all {
		assert.True(t, f.HasAccess && f.CanViewContent, f.Name)
	}

	roots, err := e.folders.ListFolders(context.Background(), e.users["manager"], services.FolderListOptions{ParentSet: true})
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Alpha", roots[0].Name)
	assert.Equal(t, "beta", roots[1].Name)
}

func TestGetContents(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	finance := e.folder(t, "alice", "Finance", nil)
	reports := e.folder(t, "alice", "Reports", finance)
	e.upload(t, "alice", "budget.txt", "numbers", finance)
	e.upload(t, "alice", "deep.txt", "more", reports)

	contents, err := e.folders.GetContents(ctx, e.users["alice"], finance.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.ID, contents.Folder.ID)
	assert.True(t, contents.Folder.CanViewContent)
	require.Len(t, contents.Folders, 1)
	assert.Equal(t, "Reports", contents.Folders[0].Name)
	require.Len(t, contents.Documents, 1, "only immediate documents")
	assert.Equal(t, "budget.txt", contents.Documents[0].OriginalName)
}

func TestGetContents_HidesInvisibleSubfolders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	shared := e.folder(t, "alice", "Shared", nil)
	_, err := e.sharing.ShareFolderWithUsers(ctx, e.users["alice"], shared.ID, e.ids("bob"))
	require.NoError(t, err)
	e.folder(t, "alice", "Secret", shared)

	contents, err := e.folders.GetContents(ctx, e.users["bob"], shared.ID)
	require.NoError(t, err)
	assert.Empty(t, contents.Folders)
}

func TestGetTree_AncestorsKeepTreeContinuous(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	finance := e.folder(t, "alice", "Finance", nil)
	a := e.folder(t, "alice", "A", finance)
	b := e.folder(t, "alice", "B", a)
	e.folder(t, "alice", "Hidden", nil)
	_, err := e.sharing.ShareFolderWithUsers(ctx, e.users["alice"], b.ID, e.ids("bob"))
	require.NoError(t, err)

	tree, err := e.folders.GetTree(ctx, e.users["bob"])
	require.NoError(t, err)
	require.Len(t, tree.Folders, 1)

	root := tree.Folders[0]
	assert.Equal(t, "Finance", root.Name)
	assert.Equal(t, docsystem.FolderAccess{HasAccess: true}, root.Access)
	require.Len(t, root.Folders, 1)
	require.Len(t, root.Folders[0].Folders, 1)
	leaf := root.Folders[0].Folders[0]
	assert.Equal(t, "B", leaf.Name)
	assert.True(t, leaf.Access.CanViewContent)
	assert.Empty(t, leaf.Folders)
}

func TestBuildTree_OrphanGoesToTop(t *testing.T) {
	tree := buildTree([]docsystem.FolderView{
		{Folder: docsystem.Folder{ID: "a", Name: "a"}},
		{Folder: docsystem.Folder{ID: "b", Name: "b", ParentID: strPtr("missing")}},
		{Folder: docsystem.Folder{ID: "c", Name: "c", ParentID: strPtr("a")}},
	})
	require.Len(t, tree.Folders, 2)
	assert.Equal(t, "a", tree.Folders[0].ID)
	assert.Equal(t, "b", tree.Folders[1].ID)
	require.Len(t, tree.Folders[0].Folders, 1)
	assert.Equal(t, "c", tree.Folders[0].Folders[0].ID)
}

func TestRenameFolder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.folder(t, "alice", "Old", nil)

	_, err := e.folders.RenameFolder(ctx, e.users["bob"], f.ID, &docsysSvc.UpdateFolderRequest{Name: "Mine"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = e.folders.RenameFolder(ctx, e.users["alice"], f.ID, &docsysSvc.UpdateFolderRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	renamed, err := e.folders.RenameFolder(ctx, e.users["manager"], f.ID, &docsysSvc.UpdateFolderRequest{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", renamed.Name)
}

func TestDeleteFolder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.users["alice"]

	withChild := e.folder(t, "alice", "Parent", nil)
	child := e.folder(t, "alice", "Child", withChild)
	withDoc := e.folder(t, "alice", "Docs", nil)
	e.upload(t, "alice", "a.txt", "x", withDoc)

	var conflict *domain.ConflictError
	err := e.folders.DeleteFolder(ctx, alice, withChild.ID)
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, withChild.ID, conflict.ResourceID)

	err = e.folders.DeleteFolder(ctx, alice, withDoc.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.ErrorIs(t, e.folders.DeleteFolder(ctx, e.users["bob"], child.ID), domain.ErrPermissionDenied)

	require.NoError(t, e.folders.DeleteFolder(ctx, alice, child.ID))
	require.NoError(t, e.folders.DeleteFolder(ctx, alice, withChild.ID))
	assert.ErrorIs(t, e.folders.DeleteFolder(ctx, alice, withChild.ID), domain.ErrNotFound)
}
