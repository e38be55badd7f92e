package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error

	// GetByID returns ErrNotFound when the id does not resolve
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail matches case-insensitively
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	Update(ctx context.Context, user *models.User) error

	Delete(ctx context.Context, id string) error

	// List returns all users ordered by name
	List(ctx context.Context) ([]models.User, error)

	// Search matches any term against name, email or role (case-insensitive)
	Search(ctx context.Context, terms []string, limit int) ([]models.User, error)

	// CountExisting returns how many of ids resolve to users
	CountExisting(ctx context.Context, ids []string) (int, error)

	// CountByDepartment returns the number of users referencing a department
	CountByDepartment(ctx context.Context, departmentID string) (int, error)
}

// DepartmentRepository defines data access operations for departments
type DepartmentRepository interface {
	Create(ctx context.Context, dept *models.Department) error

	GetByID(ctx context.Context, id string) (*models.Department, error)

	// GetByName looks up the lowercase canonical name
	GetByName(ctx context.Context, name string) (*models.Department, error)

	Update(ctx context.Context, dept *models.Department) error

	Delete(ctx context.Context, id string) error

	// ListActive returns active departments ordered by display name with employee counts
	ListActive(ctx context.Context) ([]models.Department, error)

	// CountExisting returns how many of ids resolve to departments
	CountExisting(ctx context.Context, ids []string) (int, error)
}
