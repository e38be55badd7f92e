package models

import "time"

// Role is one of the three fixed roles. Manager and admin bypass all
// ownership and sharing checks.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Privileged reports whether the role short-circuits access checks.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleManager
}

type User struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password_hash"`
	Role         Role        `json:"role" db:"role"`
	DepartmentID string      `json:"department_id" db:"department_id"`
	Department   *Department `json:"department,omitempty" db:"-"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// Current returns the identity the access layer works with.
func (u *User) Current() CurrentUser {
	return CurrentUser{ID: u.ID, Role: u.Role, DepartmentID: u.DepartmentID}
}

type Department struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"` // lowercase, unique
	DisplayName   string    `json:"display_name" db:"display_name"`
	Description   string    `json:"description" db:"description"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	EmployeeCount *int      `json:"employee_count,omitempty" db:"-"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// CurrentUser is the verified requester attached to every request.
type CurrentUser struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	DepartmentID string `json:"department_id"`
}

func (u CurrentUser) Privileged() bool {
	return u.Role.Privileged()
}
