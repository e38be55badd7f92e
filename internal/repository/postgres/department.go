package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

var departmentColumns = []string{"d.id", "d.name", "d.display_name", "d.description", "d.is_active", "d.created_at", "d.updated_at"}

// PostgresDepartmentRepository implements repositories.DepartmentRepository
type PostgresDepartmentRepository struct {
	pool   repositories.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(config *RepositoryConfig) repositories.DepartmentRepository {
	return &PostgresDepartmentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func (r *PostgresDepartmentRepository) selectDepartments() squirrel.SelectBuilder {
	return Builder().Select(departmentColumns...).From(r.tables.Departments + " d")
}

func (r *PostgresDepartmentRepository) Create(ctx context.Context, dept *models.Department) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, display_name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Departments)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		dept.Name,
		dept.DisplayName,
		dept.Description,
		dept.IsActive,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		return MapError(err, "department", dept.Name)
	}
	return nil
}

func (r *PostgresDepartmentRepository) GetByID(ctx context.Context, id string) (*models.Department, error) {
	dept, err := GetOne[models.Department](ctx, GetExecutor(ctx, r.pool),
		r.selectDepartments().Where(squirrel.Eq{"d.id": id}))
	if err != nil {
		return nil, MapError(err, "department", id)
	}
	return dept, nil
}

func (r *PostgresDepartmentRepository) GetByName(ctx context.Context, name string) (*models.Department, error) {
	dept, err := GetOne[models.Department](ctx, GetExecutor(ctx, r.pool),
		r.selectDepartments().Where(squirrel.Eq{"d.name": name}))
	if err != nil {
		return nil, MapError(err, "department", name)
	}
	return dept, nil
}

func (r *PostgresDepartmentRepository) Update(ctx context.Context, dept *models.Department) error {
	q := Builder().Update(r.tables.Departments).
		Set("display_name", dept.DisplayName).
		Set("description", dept.Description).
		Set("is_active", dept.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": dept.ID}).
		Suffix("RETURNING updated_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&dept.UpdatedAt); err != nil {
		return MapError(err, "department", dept.ID)
	}
	return nil
}

func (r *PostgresDepartmentRepository) Delete(ctx context.Context, id string) error {
	n, err := Exec(ctx, GetExecutor(ctx, r.pool),
		Builder().Delete(r.tables.Departments).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return MapError(err, "department", id)
	}
	if n == 0 {
		return MapError(pgx.ErrNoRows, "department", id)
	}
	return nil
}

// departmentWithCount adds the aggregated employee count to the base row
type departmentWithCount struct {
	models.Department
	EmployeeCount int `db:"employee_count"`
}

func (r *PostgresDepartmentRepository) ListActive(ctx context.Context) ([]models.Department, error) {
	q := Builder().
		Select(append(departmentColumns, "count(u.id) AS employee_count")...).
		From(r.tables.Departments + " d").
		LeftJoin(r.tables.Users + " u ON u.department_id = d.id").
		Where(squirrel.Eq{"d.is_active": true}).
		GroupBy("d.id").
		OrderBy("d.display_name ASC")

	var rows []departmentWithCount
	if err := Select(ctx, GetExecutor(ctx, r.pool), &rows, q); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}

	depts := make([]models.Department, 0, len(rows))
	for i := range rows {
		d := rows[i].Department
		count := rows[i].EmployeeCount
		d.EmployeeCount = &count
		depts = append(depts, d)
	}
	return depts, nil
}

func (r *PostgresDepartmentRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := Count(ctx, GetExecutor(ctx, r.pool),
		Builder().Select("count(*)").From(r.tables.Departments).Where("id = ANY(?)", ids))
	if err != nil {
		return 0, fmt.Errorf("count departments: %w", err)
	}
	return n, nil
}
