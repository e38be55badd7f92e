package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "department_id", "created_at", "updated_at"}

// PostgresUserRepository implements repositories.UserRepository
type PostgresUserRepository struct {
	pool   repositories.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func (r *PostgresUserRepository) selectUsers() squirrel.SelectBuilder {
	return Builder().Select(userColumns...).From(r.tables.Users)
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, email, password_hash, role, department_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.DepartmentID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return domain.Validation("department %s does not exist", user.DepartmentID)
		}
		return MapError(err, "user", user.Email)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := GetOne[models.User](ctx, GetExecutor(ctx, r.pool),
		r.selectUsers().Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, MapError(err, "user", id)
	}
	return user, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := GetOne[models.User](ctx, GetExecutor(ctx, r.pool),
		r.selectUsers().Where("lower(email) = lower(?)", email))
	if err != nil {
		return nil, MapError(err, "user", email)
	}
	return user, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	q := Builder().Update(r.tables.Users).
		Set("name", user.Name).
		Set("email", user.Email).
		Set("role", user.Role).
		Set("department_id", user.DepartmentID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING updated_at")
	if user.PasswordHash != "" {
		q = q.Set("password_hash", user.PasswordHash)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&user.UpdatedAt); err != nil {
		if IsPgForeignKeyError(err) {
			return domain.Validation("department %s does not exist", user.DepartmentID)
		}
		return MapError(err, "user", user.ID)
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	n, err := Exec(ctx, GetExecutor(ctx, r.pool),
		Builder().Delete(r.tables.Users).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return MapError(err, "user", id)
	}
	if n == 0 {
		return MapError(pgx.ErrNoRows, "user", id)
	}
	return nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := Select(ctx, GetExecutor(ctx, r.pool), &users,
		r.selectUsers().OrderBy("lower(name) ASC", "id")); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) Search(ctx context.Context, terms []string, limit int) ([]models.User, error) {
	users := []models.User{}
	if len(terms) == 0 {
		return users, nil
	}

	or := squirrel.Or{}
	for _, t := range terms {
		p := ContainsPattern(strings.TrimSpace(t))
		or = append(or,
			squirrel.ILike{"name": p},
			squirrel.ILike{"email": p},
			squirrel.ILike{"role": p},
		)
	}
	q := r.selectUsers().Where(or).OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	if err := Select(ctx, GetExecutor(ctx, r.pool), &users, q); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := Count(ctx, GetExecutor(ctx, r.pool),
		Builder().Select("count(*)").From(r.tables.Users).Where("id = ANY(?)", ids))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepository) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	n, err := Count(ctx, GetExecutor(ctx, r.pool),
		Builder().Select("count(*)").From(r.tables.Users).Where(squirrel.Eq{"department_id": departmentID}))
	if err != nil {
		return 0, fmt.Errorf("count department users: %w", err)
	}
	return n, nil
}
