package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/config"
	"docvault/internal/domain"
)

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "1-abc.txt", strings.NewReader("hello"), 5, "text/plain"))

	rc, err := s.Open(ctx, "1-abc.txt")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(b))

	require.NoError(t, s.Delete(ctx, "1-abc.txt"))
	require.NoError(t, s.Delete(ctx, "1-abc.txt"), "delete is idempotent")

	_, err = s.Open(ctx, "1-abc.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape", "a/b", "..", ""} {
		err := s.Save(context.Background(), key, strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, domain.ErrValidation, key)
	}
}

func TestLocalStore_CanceledSaveLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Save(ctx, "f.txt", strings.NewReader("data"), 4, ""))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = os.Stat(filepath.Join(dir, "f.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"}, nil)
	assert.Error(t, err)
}
