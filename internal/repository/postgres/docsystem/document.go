package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	models "docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/repositories"
	docsysRepo "docvault/internal/domain/repositories/docsystem"

	"docvault/internal/repository/postgres"
)

var documentColumns = []string{
	"id", "name", "original_name", "mime_type", "size", "path", "folder_id", "owner_id",
	"tags", "is_starred", "is_shared", "shared_with", "perm_read", "perm_write", "perm_delete",
	"created_at", "updated_at",
}

// sortColumns whitelists the columns a listing may be ordered by
var sortColumns = map[string]string{
	"created_at": "created_at",
	"name":       "lower(original_name)",
	"size":       "size",
}

// documentRow mirrors the documents table. Permission lists are stored as
// three separate arrays.
type documentRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	OriginalName string    `db:"original_name"`
	MimeType     string    `db:"mime_type"`
	Size         int64     `db:"size"`
	Path         string    `db:"path"`
	FolderID     *string   `db:"folder_id"`
	OwnerID      string    `db:"owner_id"`
	Tags         []string  `db:"tags"`
	IsStarred    bool      `db:"is_starred"`
	IsShared     bool      `db:"is_shared"`
	SharedWith   []string  `db:"shared_with"`
	PermRead     []string  `db:"perm_read"`
	PermWrite    []string  `db:"perm_write"`
	PermDelete   []string  `db:"perm_delete"`
	Content      string    `db:"content"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *documentRow) toModel() models.Document {
	return models.Document{
		ID:           r.ID,
		Name:         r.Name,
		OriginalName: r.OriginalName,
		MimeType:     r.MimeType,
		Size:         r.Size,
		Path:         r.Path,
		FolderID:     r.FolderID,
		OwnerID:      r.OwnerID,
		Tags:         postgres.NonNil(r.Tags),
		IsStarred:    r.IsStarred,
		IsShared:     r.IsShared,
		SharedWith:   postgres.NonNil(r.SharedWith),
		Permissions: models.Permissions{
			Read:   postgres.NonNil(r.PermRead),
			Write:  postgres.NonNil(r.PermWrite),
			Delete: postgres.NonNil(r.PermDelete),
		},
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toModels(rows []documentRow) []models.Document {
	docs := make([]models.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, rows[i].toModel())
	}
	return docs
}

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   repositories.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) docsysRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func (r *PostgresDocumentRepository) columns(withContent bool) []string {
	if !withContent {
		return documentColumns
	}
	return append(append([]string{}, documentColumns...), "content")
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, original_name, mime_type, size, path, folder_id, owner_id,
			tags, is_shared, shared_with, perm_read, perm_write, perm_delete)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	doc.Tags = postgres.NonNil(doc.Tags)
	doc.SharedWith = postgres.NonNil(doc.SharedWith)
	doc.Permissions.Read = postgres.NonNil(doc.Permissions.Read)
	doc.Permissions.Write = postgres.NonNil(doc.Permissions.Write)
	doc.Permissions.Delete = postgres.NonNil(doc.Permissions.Delete)
	doc.IsShared = len(doc.SharedWith) > 0

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Name,
		doc.OriginalName,
		doc.MimeType,
		doc.Size,
		doc.Path,
		doc.FolderID,
		doc.OwnerID,
		doc.Tags,
		doc.IsShared,
		doc.SharedWith,
		doc.Permissions.Read,
		doc.Permissions.Write,
		doc.Permissions.Delete,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return postgres.MapError(pgx.ErrNoRows, "folder", deref(doc.FolderID))
		}
		return postgres.MapError(err, "document", doc.OriginalName)
	}
	return nil
}

// GetByID retrieves a document by ID including extracted content
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	row, err := postgres.GetOne[documentRow](ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Select(r.columns(true)...).From(r.tables.Documents).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, postgres.MapError(err, "document", id)
	}
	doc := row.toModel()
	return &doc, nil
}

// List returns documents matching the query without content
func (r *PostgresDocumentRepository) List(ctx context.Context, q models.DocumentQuery) ([]models.Document, error) {
	return r.list(ctx, q, false)
}

// SearchContent returns documents matching the query with content loaded
func (r *PostgresDocumentRepository) SearchContent(ctx context.Context, q models.DocumentQuery) ([]models.Document, error) {
	return r.list(ctx, q, true)
}

func (r *PostgresDocumentRepository) list(ctx context.Context, q models.DocumentQuery, withContent bool) ([]models.Document, error) {
	sb := applyDocumentQuery(postgres.Builder().Select(r.columns(withContent)...).From(r.tables.Documents), q)

	var rows []documentRow
	if err := postgres.Select(ctx, postgres.GetExecutor(ctx, r.pool), &rows, sb); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return toModels(rows), nil
}

// applyDocumentQuery translates a DocumentQuery into WHERE/ORDER/LIMIT clauses.
func applyDocumentQuery(sb squirrel.SelectBuilder, q models.DocumentQuery) squirrel.SelectBuilder {
	if q.Scope != nil {
		sb = sb.Where(scopePredicate(q.Scope))
	}
	if q.OwnerID != "" {
		sb = sb.Where(squirrel.Eq{"owner_id": q.OwnerID})
	}
	if q.SharedWith != "" {
		sb = sb.Where("? = ANY(shared_with)", q.SharedWith)
	}
	if q.FolderSet {
		// Eq with a nil value renders IS NULL
		if q.FolderID == nil {
			sb = sb.Where(squirrel.Eq{"folder_id": nil})
		} else {
			sb = sb.Where(squirrel.Eq{"folder_id": *q.FolderID})
		}
	}
	if q.IDs != nil {
		sb = sb.Where("id = ANY(?)", postgres.NonNil(q.IDs))
	}
	if q.Starred != nil {
		sb = sb.Where(squirrel.Eq{"is_starred": *q.Starred})
	}
	if q.NameQuery != "" {
		sb = sb.Where(squirrel.ILike{"original_name": postgres.ContainsPattern(q.NameQuery)})
	}
	if q.TagID != "" {
		sb = sb.Where("? = ANY(tags)", q.TagID)
	}
	if len(q.ContentTerms) > 0 {
		or := squirrel.Or{}
		for _, t := range q.ContentTerms {
			or = append(or, squirrel.ILike{"content": postgres.ContainsPattern(t)})
		}
		sb = sb.Where(or)
	}
	if len(q.MetadataTerms) > 0 {
		or := squirrel.Or{}
		for _, t := range q.MetadataTerms {
			p := postgres.ContainsPattern(t)
			or = append(or, squirrel.ILike{"original_name": p}, squirrel.ILike{"mime_type": p})
		}
		sb = sb.Where(or)
	}

	sort := q.Sort
	col, ok := sortColumns[sort.Field]
	if !ok {
		sort = models.DefaultDocumentSort
		col = sortColumns[sort.Field]
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	sb = sb.OrderBy(col+" "+dir, "id "+dir)

	if q.Limit > 0 {
		sb = sb.Limit(uint64(q.Limit))
	}
	return sb
}

// scopePredicate renders owner / folder / shared as one OR group. An empty
// scope matches nothing.
func scopePredicate(s *models.DocumentScope) squirrel.Sqlizer {
	or := squirrel.Or{}
	if s.OwnerID != "" {
		or = append(or, squirrel.Eq{"owner_id": s.OwnerID})
	}
	if len(s.FolderIDs) > 0 {
		or = append(or, squirrel.Expr("folder_id = ANY(?)", s.FolderIDs))
	}
	if s.SharedWith != "" {
		or = append(or, squirrel.Expr("(? = ANY(shared_with) OR ? = ANY(perm_read))", s.SharedWith, s.SharedWith))
	}
	if len(or) == 0 {
		return squirrel.Expr("FALSE")
	}
	return or
}

func (r *PostgresDocumentRepository) update(ctx context.Context, id string, ub squirrel.UpdateBuilder) (*models.Document, error) {
	ub = ub.Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(documentColumns, ", "))

	row, err := postgres.GetOne[documentRow](ctx, postgres.GetExecutor(ctx, r.pool), ub)
	if err != nil {
		return nil, postgres.MapError(err, "document", id)
	}
	doc := row.toModel()
	return &doc, nil
}

// SetStarred updates the starred flag
func (r *PostgresDocumentRepository) SetStarred(ctx context.Context, id string, starred bool) (*models.Document, error) {
	return r.update(ctx, id, postgres.Builder().Update(r.tables.Documents).Set("is_starred", starred))
}

// UpdateSharing replaces shared_with and the permission lists
func (r *PostgresDocumentRepository) UpdateSharing(ctx context.Context, id string, sharedWith []string, perms models.Permissions) (*models.Document, error) {
	sharedWith = postgres.NonNil(sharedWith)
	return r.update(ctx, id, postgres.Builder().Update(r.tables.Documents).
		Set("shared_with", sharedWith).
		Set("is_shared", len(sharedWith) > 0).
		Set("perm_read", postgres.NonNil(perms.Read)).
		Set("perm_write", postgres.NonNil(perms.Write)).
		Set("perm_delete", postgres.NonNil(perms.Delete)))
}

// SetTags replaces the tag list
func (r *PostgresDocumentRepository) SetTags(ctx context.Context, id string, tagIDs []string) (*models.Document, error) {
	return r.update(ctx, id, postgres.Builder().Update(r.tables.Documents).Set("tags", postgres.NonNil(tagIDs)))
}

// UpdateContent stores extracted text
func (r *PostgresDocumentRepository) UpdateContent(ctx context.Context, id, content string) error {
	n, err := postgres.Exec(ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Update(r.tables.Documents).
			Set("content", content).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": id}))
	if err != nil {
		return postgres.MapError(err, "document", id)
	}
	if n == 0 {
		return postgres.MapError(pgx.ErrNoRows, "document", id)
	}
	return nil
}

// Delete deletes a document
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	n, err := postgres.Exec(ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Delete(r.tables.Documents).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return postgres.MapError(err, "document", id)
	}
	if n == 0 {
		return postgres.MapError(pgx.ErrNoRows, "document", id)
	}
	return nil
}

// ListFolderIDsSharedWith returns folders holding at least one document
// shared with the user or granting them read
func (r *PostgresDocumentRepository) ListFolderIDsSharedWith(ctx context.Context, userID string) ([]string, error) {
	q := postgres.Builder().
		Select("DISTINCT folder_id").
		From(r.tables.Documents).
		Where("(? = ANY(shared_with) OR ? = ANY(perm_read))", userID, userID).
		Where(squirrel.NotEq{"folder_id": nil})

	ids := []string{}
	if err := postgres.Select(ctx, postgres.GetExecutor(ctx, r.pool), &ids, q); err != nil {
		return nil, fmt.Errorf("list shared folder ids: %w", err)
	}
	return ids, nil
}

// CountInFolder counts documents directly inside a folder
func (r *PostgresDocumentRepository) CountInFolder(ctx context.Context, folderID string) (int, error) {
	n, err := postgres.Count(ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Select("count(*)").From(r.tables.Documents).Where(squirrel.Eq{"folder_id": folderID}))
	if err != nil {
		return 0, fmt.Errorf("count folder documents: %w", err)
	}
	return n, nil
}

// RemoveTag drops a tag id from every document carrying it
func (r *PostgresDocumentRepository) RemoveTag(ctx context.Context, tagID string) error {
	_, err := postgres.Exec(ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Update(r.tables.Documents).
			Set("tags", squirrel.Expr("array_remove(tags, ?::uuid)", tagID)).
			Where("? = ANY(tags)", tagID))
	if err != nil {
		return fmt.Errorf("remove tag %s: %w", tagID, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
