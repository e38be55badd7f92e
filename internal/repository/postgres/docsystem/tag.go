package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"docvault/internal/domain"
	models "docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/repositories"
	docsysRepo "docvault/internal/domain/repositories/docsystem"

	"docvault/internal/repository/postgres"
)

var tagColumns = []string{"id", "name", "color", "owner_id", "created_at", "updated_at"}

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   repositories.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *postgres.RepositoryConfig) docsysRepo.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func (r *PostgresTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, color, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, r.tables.Tags)

	err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		tag.Name,
		tag.Color,
		tag.OwnerID,
	).Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, tag)
		}
		return postgres.MapError(err, "tag", tag.Name)
	}
	return nil
}

// conflict builds a ConflictError pointing at the existing same-named tag
func (r *PostgresTagRepository) conflict(ctx context.Context, tag *models.Tag) error {
	existing, err := postgres.GetOne[models.Tag](ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Select(tagColumns...).From(r.tables.Tags).
			Where(squirrel.Eq{"owner_id": tag.OwnerID, "name": tag.Name}))
	id := ""
	if err == nil {
		id = existing.ID
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("tag '%s' already exists", tag.Name),
		ResourceType: "tag",
		ResourceID:   id,
	}
}

func (r *PostgresTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	tag, err := postgres.GetOne[models.Tag](ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Select(tagColumns...).From(r.tables.Tags).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, postgres.MapError(err, "tag", id)
	}
	return tag, nil
}

func (r *PostgresTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	sql, args, err := postgres.Builder().Update(r.tables.Tags).
		Set("name", tag.Name).
		Set("color", tag.Color).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": tag.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&tag.UpdatedAt); err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, tag)
		}
		return postgres.MapError(err, "tag", tag.ID)
	}
	return nil
}

func (r *PostgresTagRepository) Delete(ctx context.Context, id string) error {
	n, err := postgres.Exec(ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Delete(r.tables.Tags).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return postgres.MapError(err, "tag", id)
	}
	if n == 0 {
		return postgres.MapError(pgx.ErrNoRows, "tag", id)
	}
	return nil
}

func (r *PostgresTagRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := postgres.Select(ctx, postgres.GetExecutor(ctx, r.pool), &tags,
		postgres.Builder().Select(tagColumns...).From(r.tables.Tags).
			Where(squirrel.Eq{"owner_id": ownerID}).
			OrderBy("name ASC")); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (r *PostgresTagRepository) CountOwned(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := postgres.Count(ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Select("count(*)").From(r.tables.Tags).
			Where(squirrel.Eq{"owner_id": ownerID}).
			Where("id = ANY(?)", ids))
	if err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}
