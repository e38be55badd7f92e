package docsystem

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "docvault/internal/domain/models/docsystem"
	"docvault/internal/repository/postgres"
)

func toSQL(t *testing.T, q models.DocumentQuery) (string, []any) {
	t.Helper()
	sql, args, err := applyDocumentQuery(postgres.Builder().Select("id").From("documents"), q).ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestApplyDocumentQuery_DefaultSort(t *testing.T) {
	sql, args := toSQL(t, models.DocumentQuery{})
	assert.Equal(t, "SELECT id FROM documents ORDER BY created_at DESC, id DESC", sql)
	assert.Empty(t, args)
}

func TestApplyDocumentQuery_UnknownSortFallsBack(t *testing.T) {
	sql, _ := toSQL(t, models.DocumentQuery{Sort: models.DocumentSort{Field: "path; DROP TABLE"}})
	assert.Contains(t, sql, "ORDER BY created_at DESC")
}

func TestApplyDocumentQuery_Scope(t *testing.T) {
	sql, args := toSQL(t, models.DocumentQuery{
		Scope: &models.DocumentScope{OwnerID: "u1", FolderIDs: []string{"f1"}, SharedWith: "u1"},
		Sort:  models.DocumentSort{Field: "name"},
	})
	assert.Contains(t, sql, "WHERE (owner_id = $1 OR folder_id = ANY($2) OR ($3 = ANY(shared_with) OR $4 = ANY(perm_read)))")
	assert.Contains(t, sql, "ORDER BY lower(original_name) ASC")
	assert.Equal(t, []any{"u1", []string{"f1"}, "u1", "u1"}, args)
}

func TestApplyDocumentQuery_EmptyScopeMatchesNothing(t *testing.T) {
	sql, _ := toSQL(t, models.DocumentQuery{Scope: &models.DocumentScope{}})
	assert.Contains(t, sql, "WHERE FALSE")
}

func TestApplyDocumentQuery_MyDrive(t *testing.T) {
	sql, args := toSQL(t, models.DocumentQuery{OwnerID: "u1", FolderSet: true})
	assert.Contains(t, sql, "WHERE owner_id = $1 AND folder_id IS NULL")
	assert.Equal(t, []any{"u1"}, args)
}

func TestApplyDocumentQuery_Refinements(t *testing.T) {
	starred := true
	sql, args := toSQL(t, models.DocumentQuery{
		FolderSet: true,
		FolderID:  strPtr("f1"),
		Starred:   &starred,
		NameQuery: "50%",
		TagID:     "t1",
		Limit:     5,
	})
	assert.Contains(t, sql, "folder_id = $1 AND is_starred = $2 AND original_name ILIKE $3 AND $4 = ANY(tags)")
	assert.Contains(t, sql, "LIMIT 5")
	assert.Equal(t, []any{"f1", true, `%50\%%`, "t1"}, args)
}

func TestApplyDocumentQuery_ContentTerms(t *testing.T) {
	sql, args := toSQL(t, models.DocumentQuery{ContentTerms: []string{"budget", "q1"}})
	assert.Contains(t, sql, "(content ILIKE $1 OR content ILIKE $2)")
	assert.Equal(t, []any{"%budget%", "%q1%"}, args)
}

func TestDocumentRepository_ListFolderIDsSharedWith(t *testing.T) {
	cfg, mock := newMockConfig(t)
	repo := NewDocumentRepository(cfg)

	mock.ExpectQuery(`SELECT DISTINCT folder_id FROM documents WHERE \(\$1 = ANY\(shared_with\) OR \$2 = ANY\(perm_read\)\) AND folder_id IS NOT NULL`).
		WithArgs("u1", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"folder_id"}).AddRow("f1").AddRow("f2"))

	ids, err := repo.ListFolderIDsSharedWith(context.Background(), "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"f1", "f2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_CountInFolder(t *testing.T) {
	cfg, mock := newMockConfig(t)
	repo := NewDocumentRepository(cfg)

	mock.ExpectQuery(`SELECT count\(\*\) FROM documents WHERE folder_id = \$1`).
		WithArgs("f1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	n, err := repo.CountInFolder(context.Background(), "f1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_RemoveTag(t *testing.T) {
	cfg, mock := newMockConfig(t)
	repo := NewDocumentRepository(cfg)

	mock.ExpectExec(`UPDATE documents SET tags = array_remove\(tags, \$1::uuid\) WHERE \$2 = ANY\(tags\)`).
		WithArgs("t1", "t1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	require.NoError(t, repo.RemoveTag(context.Background(), "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
