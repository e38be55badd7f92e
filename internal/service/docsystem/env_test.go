package docsystem

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/models/docsystem"
	docsysSvc "docvault/internal/domain/services/docsystem"
	"docvault/internal/repository/memory"
	"docvault/internal/service/auth"
	"docvault/internal/service/docsystem/converter"
)

// memFileStore keeps uploads in a map.
type memFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string][]byte{}}
}

func (m *memFileStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = b
	return nil
}

func (m *memFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[key]
	if !ok {
		return nil, domain.NotFound("file", key)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memFileStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *memFileStore) Name() string { return "memory" }

func (m *memFileStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type env struct {
	store   *memory.Store
	files   *memFileStore
	indexer *Indexer
	depts   map[string]string
	users   map[string]models.CurrentUser

	folders  docsysSvc.FolderService
	docs     docsysSvc.DocumentService
	sharing  docsysSvc.SharingService
	tags     docsysSvc.TagService
	invoices docsysSvc.InvoiceService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore()
	files := newMemFileStore()
	resolver := auth.NewAccessResolver(store.Folders(), store.Documents(), logger)
	composer := auth.NewQueryComposer(resolver, store.Invoices(), logger)
	validator := NewResourceValidator(store.Users(), store.Departments(), store.Tags())
	indexer := NewIndexer(store.Documents(), files, converter.NewConverterRegistry(), 2, logger)
	t.Cleanup(func() { _ = indexer.Close(context.Background()) })

	e := &env{
		store:    store,
		files:    files,
		indexer:  indexer,
		depts:    map[string]string{},
		users:    map[string]models.CurrentUser{},
		folders:  NewFolderService(store.Folders(), store.Documents(), resolver, composer, logger),
		docs:     NewDocumentService(store.Documents(), resolver, composer, files, indexer, validator, logger),
		sharing:  NewSharingService(store.Folders(), store.Documents(), validator, logger),
		tags:     NewTagService(store.Tags(), store.Documents(), store.TxManager(), logger),
		invoices: NewInvoiceService(store.Invoices(), store.Documents(), resolver, composer, logger),
	}

	for _, name := range []string{"hr", "finance", "it"} {
		d := &models.Department{Name: name, DisplayName: strings.ToUpper(name), IsActive: true}
		require.NoError(t, store.Departments().Create(ctx, d))
		e.depts[name] = d.ID
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
	} {
		user := &models.User{Name: u.key, Email: u.key + "@company.com", PasswordHash: "x", Role: u.role, DepartmentID: e.depts[u.dept]}
		require.NoError(t, store.Users().Create(ctx, user))
		e.users[u.key] = user.Current()
	}
	return e
}

func (e *env) folder(t *testing.T, owner, name string, parent *docsystem.Folder) *docsystem.Folder {
	t.Helper()
	req := &docsysSvc.CreateFolderRequest{Name: name}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	f, err := e.folders.CreateFolder(context.Background(), e.users[owner], req)
	require.NoError(t, err)
	return f
}

func (e *env) upload(t *testing.T, owner, name, body string, folder *docsystem.Folder) *docsystem.Document {
	t.Helper()
	req := &docsysSvc.UploadDocumentRequest{
		OriginalName: name,
		MimeType:     "text/plain",
		Size:         int64(len(body)),
		Body:         strings.NewReader(body),
	}
	if folder != nil {
		req.FolderID = &folder.ID
	}
	d, err := e.docs.UploadDocument(context.Background(), e.users[owner], req)
	require.NoError(t, err)
	return d
}

func (e *env) ids(users ...string) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, e.users[u].ID)
	}
	return out
}
