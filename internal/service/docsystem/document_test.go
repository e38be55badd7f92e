package docsystem

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/services"
	docsysSvc "docvault/internal/domain/services/docsystem"
	"docvault/internal/service/docsystem/converter"
)

func TestStorageKey(t *testing.T) {
	key := storageKey("Quarterly Report.PDF")
	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]{12}\.pdf$`), key)
	assert.NotEqual(t, key, storageKey("Quarterly Report.PDF"))
	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]{12}$`), storageKey("noext"))
}

func TestUploadName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"  ", ""},
		{".", ""},
		{"..", ""},
		{"/", ""},
		{" report.pdf ", "report.pdf"},
		{"/tmp/upload/report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uploadName(tt.in), "input %q", tt.in)
	}
}

func TestUploadDocument_StoresAndIndexes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	doc := e.upload(t, "alice", "notes.txt", "\uFEFFMeeting notes\r\nbudget approved", nil)
	assert.Equal(t, "notes.txt", doc.OriginalName)
	assert.Equal(t, doc.Name, doc.Path)
	assert.Equal(t, int64(len("\uFEFFMeeting notes\r\nbudget approved")), doc.Size)
	assert.Equal(t, e.users["alice"].ID, doc.OwnerID)
	assert.Empty(t, doc.SharedWith)
	assert.Equal(t, 1, e.files.count())

	require.NoError(t, e.indexer.Close(ctx))
	stored, err := e.store.Documents().GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meeting notes\nbudget approved", stored.Content)
}

func TestUploadDocument_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	private := e.folder(t, "alice", "Private", nil)
	bobTag, err := e.tags.CreateTag(ctx, e.users["bob"], &docsysSvc.TagRequest{Name: "bob"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     *docsysSvc.UploadDocumentRequest
		wantErr error
	}{
		{"no name", &docsysSvc.UploadDocumentRequest{Body: strings.NewReader("x"), Size: 1}, domain.ErrValidation},
		{"blank name", &docsysSvc.UploadDocumentRequest{OriginalName: "   ", Body: strings.NewReader("x"), Size: 1}, domain.ErrValidation},
		{"dot name", &docsysSvc.UploadDocumentRequest{OriginalName: ".", Body: strings.NewReader("x"), Size: 1}, domain.ErrValidation},
		{"parent dir name", &docsysSvc.UploadDocumentRequest{OriginalName: "../", Body: strings.NewReader("x"), Size: 1}, domain.ErrValidation},
		{"separator name", &docsysSvc.UploadDocumentRequest{OriginalName: "/", Body: strings.NewReader("x"), Size: 1}, domain.ErrValidation},
		{"too large", &docsysSvc.UploadDocumentRequest{OriginalName: "big.bin", Body: strings.NewReader(""), Size: config.MaxUploadSize + 1}, domain.ErrValidation},
		{"no body", &docsysSvc.UploadDocumentRequest{OriginalName: "a.txt"}, domain.ErrValidation},
		{"folder without access", &docsysSvc.UploadDocumentRequest{OriginalName: "a.txt", Body: strings.NewReader("x"), Size: 1, FolderID: &private.ID}, domain.ErrAccessDenied},
		{"foreign tag", &docsysSvc.UploadDocumentRequest{OriginalName: "a.txt", Body: strings.NewReader("x"), Size: 1, TagIDs: []string{bobTag.ID}}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := e.users["carol"]
			if tt.name == "foreign tag" {
				user = e.users["alice"]
			}
			_, err := e.docs.UploadDocument(ctx, user, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, e.files.count(), "rejected uploads store nothing")
}

func TestUploadDocument_FolderAndTags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.folder(t, "alice", "Finance", nil)
	tag, err := e.tags.CreateTag(ctx, e.users["alice"], &docsysSvc.TagRequest{Name: "q1"})
	require.NoError(t, err)

	doc, err := e.docs.UploadDocument(ctx, e.users["alice"], &docsysSvc.UploadDocumentRequest{
		OriginalName: "../../etc/report.csv",
		Size:         3,
		Body:         strings.NewReader("a,b"),
		FolderID:     &f.ID,
		TagIDs:       []string{tag.ID, tag.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "report.csv", doc.OriginalName, "directory components are stripped")
	assert.Equal(t, "application/octet-stream", doc.MimeType)
	assert.Equal(t, []string{tag.ID}, doc.Tags)
	require.NotNil(t, doc.FolderID)
	assert.Equal(t, f.ID, *doc.FolderID)
}

func TestOpenFile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.upload(t, "alice", "a.txt", "hello", nil)

	got, rc, err := e.docs.OpenFile(ctx, e.users["alice"], doc.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, doc.ID, got.ID)

	_, _, err = e.docs.OpenFile(ctx, e.users["bob"], doc.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, _, err = e.docs.OpenFile(ctx, e.users["manager"], doc.ID)
	assert.NoError(t, err)
}

func TestDocumentActions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.users["alice"], e.users["bob"]
	doc := e.upload(t, "alice", "a.txt", "hello", nil)

	_, err := e.sharing.ShareDocument(ctx, alice, doc.ID, &docsysSvc.ShareDocumentRequest{UserIDs: e.ids("bob")})
	require.NoError(t, err)

	starred, err := e.docs.SetStarred(ctx, bob, doc.ID, true)
	require.NoError(t, err, "read access is enough to star")
	assert.True(t, starred.IsStarred)

	_, err = e.docs.SetTags(ctx, bob, doc.ID, nil)
	assert.ErrorIs(t, err, domain.ErrAccessDenied, "share without write grant")

	assert.ErrorIs(t, e.docs.DeleteDocument(ctx, bob, doc.ID), domain.ErrAccessDenied)

	_, err = e.sharing.ShareDocument(ctx, alice, doc.ID, &docsysSvc.ShareDocumentRequest{
		UserIDs:     e.ids("bob"),
		Permissions: &docsysSvc.PermissionsInput{Write: e.ids("bob"), Delete: e.ids("bob")},
	})
	require.NoError(t, err)

	tag, err := e.tags.CreateTag(ctx, bob, &docsysSvc.TagRequest{Name: "mine"})
	require.NoError(t, err)
	tagged, err := e.docs.SetTags(ctx, bob, doc.ID, []string{tag.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{tag.ID}, tagged.Tags)

	require.NoError(t, e.docs.DeleteDocument(ctx, bob, doc.ID))
	assert.Zero(t, e.files.count())
	_, err = e.docs.GetDocument(ctx, alice, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListDocuments_Modes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.users["alice"]

	f := e.folder(t, "alice", "Finance", nil)
	root := e.upload(t, "alice", "root.txt", "r", nil)
	e.upload(t, "alice", "inside.txt", "i", f)
	_, err := e.docs.SetStarred(ctx, alice, root.ID, true)
	require.NoError(t, err)

	mine, err := e.docs.ListDocuments(ctx, alice, services.DocumentListOptions{MyDrive: true})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "root.txt", mine[0].OriginalName)

	inFolder, err := e.docs.ListDocuments(ctx, alice, services.DocumentListOptions{FolderSet: true, FolderID: &f.ID})
	require.NoError(t, err)
	require.Len(t, inFolder, 1)
	assert.Equal(t, "inside.txt", inFolder[0].OriginalName)

	atRoot, err := e.docs.ListDocuments(ctx, alice, services.DocumentListOptions{FolderSet: true, FolderID: strPtr("null")})
	require.NoError(t, err)
	require.Len(t, atRoot, 1)

	starred, err := e.docs.ListDocuments(ctx, alice, services.DocumentListOptions{Starred: true})
	require.NoError(t, err)
	require.Len(t, starred, 1)

	_, err = e.docs.ListDocuments(ctx, alice, services.DocumentListOptions{Sort: "owner"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	none, err := e.docs.ListDocuments(ctx, e.users["bob"], services.DocumentListOptions{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIndexer_SkipsUnsupportedAndSurvivesClose(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	doc := e.upload(t, "alice", "photo.jpg", "\xff\xd8\xff", nil)
	md := e.upload(t, "alice", "readme.md", "# Title", nil)

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, e.indexer.Close(closeCtx))
	require.NoError(t, e.indexer.Close(closeCtx), "close is idempotent")

	e.indexer.Enqueue(doc.ID, doc.Path, "late.txt")

	stored, err := e.store.Documents().GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Content)

	stored, err = e.store.Documents().GetByID(ctx, md.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Title", stored.Content)
}

func TestIndexer_TruncatesAtExtractLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ix := NewIndexer(e.store.Documents(), e.files, converter.NewConverterRegistry(), 1, logger)
	t.Cleanup(func() { _ = ix.Close(context.Background()) })
	ix.maxExtract = 8

	doc := &docsystem.Document{
		Name: "long.txt", OriginalName: "long.txt", MimeType: "text/plain", Path: "long-key.txt",
		OwnerID: e.users["alice"].ID, Tags: []string{}, SharedWith: []string{},
	}
	require.NoError(t, e.store.Documents().Create(ctx, doc))
	require.NoError(t, e.files.Save(ctx, doc.Path, strings.NewReader("01234567overflow"), 16, "text/plain"))

	require.NoError(t, ix.process(indexJob{documentID: doc.ID, storagePath: doc.Path, filename: doc.OriginalName}))
	stored, err := e.store.Documents().GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "01234567", stored.Content)
	assert.Contains(t, logs.String(), "content truncated")
	assert.Contains(t, logs.String(), "limit=8")

	logs.Reset()
	require.NoError(t, e.files.Save(ctx, doc.Path, strings.NewReader("exactly8"), 8, "text/plain"))
	require.NoError(t, ix.process(indexJob{documentID: doc.ID, storagePath: doc.Path, filename: doc.OriginalName}))
	stored, err = e.store.Documents().GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "exactly8", stored.Content)
	assert.Empty(t, logs.String(), "a file at the limit is read whole")
}

var _ docsysSvc.FileStore = (*memFileStore)(nil)
