package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	models "docvault/internal/domain/models/docsystem"
	"docvault/internal/domain/repositories"
	docsysRepo "docvault/internal/domain/repositories/docsystem"

	"docvault/internal/repository/postgres"
)

var folderColumns = []string{
	"id", "name", "parent_id", "owner_id", "shared_with", "department_access", "is_shared", "created_at", "updated_at",
}

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   repositories.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) docsysRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func (r *PostgresFolderRepository) selectFolders() squirrel.SelectBuilder {
	return postgres.Builder().Select(folderColumns...).From(r.tables.Folders)
}

func normalizeFolder(f *models.Folder) {
	f.SharedWith = postgres.NonNil(f.SharedWith)
	f.DepartmentAccess = postgres.NonNil(f.DepartmentAccess)
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, parent_id, owner_id, shared_with, department_access, is_shared)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	normalizeFolder(folder)
	folder.IsShared = len(folder.SharedWith) > 0

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.OwnerID,
		folder.SharedWith,
		folder.DepartmentAccess,
		folder.IsShared,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) && folder.ParentID != nil {
			return postgres.MapError(pgx.ErrNoRows, "folder", *folder.ParentID)
		}
		return postgres.MapError(err, "folder", folder.Name)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	folder, err := postgres.GetOne[models.Folder](ctx, postgres.GetExecutor(ctx, r.pool),
		r.selectFolders().Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, postgres.MapError(err, "folder", id)
	}
	normalizeFolder(folder)
	return folder, nil
}

func (r *PostgresFolderRepository) update(ctx context.Context, id string, ub squirrel.UpdateBuilder) (*models.Folder, error) {
	ub = ub.Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(folderColumns, ", "))

	folder, err := postgres.GetOne[models.Folder](ctx, postgres.GetExecutor(ctx, r.pool), ub)
	if err != nil {
		return nil, postgres.MapError(err, "folder", id)
	}
	normalizeFolder(folder)
	return folder, nil
}

// UpdateName renames a folder
func (r *PostgresFolderRepository) UpdateName(ctx context.Context, id, name string) (*models.Folder, error) {
	return r.update(ctx, id, postgres.Builder().Update(r.tables.Folders).Set("name", name))
}

// SetSharedWith writes shared_with and is_shared in one statement so a
// concurrent department update is never overwritten.
func (r *PostgresFolderRepository) SetSharedWith(ctx context.Context, id string, userIDs []string) (*models.Folder, error) {
	userIDs = postgres.NonNil(userIDs)
	return r.update(ctx, id, postgres.Builder().Update(r.tables.Folders).
		Set("shared_with", userIDs).
		Set("is_shared", len(userIDs) > 0))
}

// SetDepartmentAccess writes department_access only
func (r *PostgresFolderRepository) SetDepartmentAccess(ctx context.Context, id string, departmentIDs []string) (*models.Folder, error) {
	return r.update(ctx, id, postgres.Builder().Update(r.tables.Folders).
		Set("department_access", postgres.NonNil(departmentIDs)))
}

// Delete deletes a folder. A child or document inserted concurrently makes
// the RESTRICT foreign key fail, which surfaces as a conflict.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	n, err := postgres.Exec(ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Delete(r.tables.Folders).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return postgres.MapError(err, "folder", id)
	}
	if n == 0 {
		return postgres.MapError(pgx.ErrNoRows, "folder", id)
	}
	return nil
}

// List returns folders matching the query ordered by name (case-insensitive)
func (r *PostgresFolderRepository) List(ctx context.Context, q models.FolderQuery) ([]models.Folder, error) {
	sb := r.selectFolders()
	if !q.All {
		sb = sb.Where("id = ANY(?)", postgres.NonNil(q.IDs))
	}
	if q.ParentSet {
		if q.ParentID == nil {
			sb = sb.Where(squirrel.Eq{"parent_id": nil})
		} else {
			sb = sb.Where(squirrel.Eq{"parent_id": *q.ParentID})
		}
	}
	sb = sb.OrderBy("lower(name) ASC", "id ASC")

	folders := []models.Folder{}
	if err := postgres.Select(ctx, postgres.GetExecutor(ctx, r.pool), &folders, sb); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	for i := range folders {
		normalizeFolder(&folders[i])
	}
	return folders, nil
}

// ListDirectAccess returns folders the user owns, is listed on, or whose
// department grant covers the user's department
func (r *PostgresFolderRepository) ListDirectAccess(ctx context.Context, userID, departmentID string) ([]models.Folder, error) {
	or := squirrel.Or{
		squirrel.Eq{"owner_id": userID},
		squirrel.Expr("? = ANY(shared_with)", userID),
	}
	if departmentID != "" {
		or = append(or, squirrel.Expr("? = ANY(department_access)", departmentID))
	}

	folders := []models.Folder{}
	if err := postgres.Select(ctx, postgres.GetExecutor(ctx, r.pool), &folders,
		r.selectFolders().Where(or)); err != nil {
		return nil, fmt.Errorf("list direct access folders: %w", err)
	}
	for i := range folders {
		normalizeFolder(&folders[i])
	}
	return folders, nil
}

// GetParentLinks returns (id, parent_id) for each id that resolves. Missing
// ids are simply absent from the result.
func (r *PostgresFolderRepository) GetParentLinks(ctx context.Context, ids []string) ([]models.ParentLink, error) {
	links := []models.ParentLink{}
	if len(ids) == 0 {
		return links, nil
	}
	if err := postgres.Select(ctx, postgres.GetExecutor(ctx, r.pool), &links,
		postgres.Builder().Select("id", "parent_id").From(r.tables.Folders).Where("id = ANY(?)", ids)); err != nil {
		return nil, fmt.Errorf("get parent links: %w", err)
	}
	return links, nil
}

// CountChildren counts immediate subfolders
func (r *PostgresFolderRepository) CountChildren(ctx context.Context, id string) (int, error) {
	n, err := postgres.Count(ctx, postgres.GetExecutor(ctx, r.pool),
		postgres.Builder().Select("count(*)").From(r.tables.Folders).Where(squirrel.Eq{"parent_id": id}))
	if err != nil {
		return 0, fmt.Errorf("count subfolders: %w", err)
	}
	return n, nil
}
