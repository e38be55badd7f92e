package services

import (
	"context"

	"docvault/internal/domain/models"
)

// AuthService handles registration and credential checks
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)

	// Authenticate resolves a bearer token to the stored user
	Authenticate(ctx context.Context, token string) (*models.User, error)

	// Me returns the user with its department populated
	Me(ctx context.Context, userID string) (*models.User, error)
}

// UserService handles directory reads and admin employee management
type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)

	CreateEmployee(ctx context.Context, caller models.CurrentUser, req *EmployeeRequest) (*models.User, error)
	UpdateEmployee(ctx context.Context, caller models.CurrentUser, id string, req *EmployeeRequest) (*models.User, error)
	DeleteEmployee(ctx context.Context, caller models.CurrentUser, id string) error
}

// DepartmentService handles department administration
type DepartmentService interface {
	ListActive(ctx context.Context) ([]models.Department, error)
	Create(ctx context.Context, caller models.CurrentUser, req *CreateDepartmentRequest) (*models.Department, error)
	Update(ctx context.Context, caller models.CurrentUser, id string, req *UpdateDepartmentRequest) (*models.Department, error)
	Delete(ctx context.Context, caller models.CurrentUser, id string) error

	// Resolve finds a department by UUID or by (case-insensitive) name
	Resolve(ctx context.Context, ref string) (*models.Department, error)
}

type RegisterRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       models.Role `json:"role,omitempty"`
	Department string      `json:"department"` // id or name
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// EmployeeRequest is used for both create and update. Password is ignored on
// update when empty.
type EmployeeRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Password   string      `json:"password,omitempty"`
	Role       models.Role `json:"role"`
	Department string      `json:"department"`
}

type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

type UpdateDepartmentRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
