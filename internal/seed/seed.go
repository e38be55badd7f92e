// Package seed loads the demo departments and accounts used in development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

type Department struct {
	Name        string
	DisplayName string
	Description string
}

type Account struct {
	Name       string
	Email      string
	Password   string
	Role       models.Role
	Department string
}

var Departments = []Department{
	{Name: "hr", DisplayName: "Human Resources", Description: "People operations and recruiting"},
	{Name: "finance", DisplayName: "Finance", Description: "Accounting, budgets and invoices"},
	{Name: "it", DisplayName: "Information Technology", Description: "Infrastructure and internal tools"},
	{Name: "marketing", DisplayName: "Marketing", Description: "Brand and campaigns"},
	{Name: "operations", DisplayName: "Operations", Description: "Facilities and logistics"},
}

var Accounts = []Account{
	{Name: "Admin User", Email: "admin@company.com", Password: "admin123", Role: models.RoleAdmin, Department: "it"},
	{Name: "HR Manager", Email: "hr.manager@company.com", Password: "manager123", Role: models.RoleManager, Department: "hr"},
	{Name: "Finance Manager", Email: "finance.manager@company.com", Password: "manager123", Role: models.RoleManager, Department: "finance"},
	{Name: "HR Employee", Email: "hr.employee@company.com", Password: "employee123", Role: models.RoleEmployee, Department: "hr"},
	{Name: "Finance Employee", Email: "finance.employee@company.com", Password: "employee123", Role: models.RoleEmployee, Department: "finance"},
	{Name: "IT Employee", Email: "it.employee@company.com", Password: "employee123", Role: models.RoleEmployee, Department: "it"},
}

// Result counts what a run created; existing rows are left alone.
type Result struct {
	Departments int
	Users       int
}

// Run inserts any missing demo departments and accounts. It is safe to run
// repeatedly.
func Run(ctx context.Context, depts repositories.DepartmentRepository, users repositories.UserRepository, logger *slog.Logger) (Result, error) {
	var res Result
	ids := make(map[string]string, len(Departments))

	for _, d := range Departments {
		existing, err := depts.GetByName(ctx, d.Name)
		switch {
		case err == nil:
			ids[d.Name] = existing.ID
			continue
		case !errors.Is(err, domain.ErrNotFound):
			return res, fmt.Errorf("look up department %s: %w", d.Name, err)
		}
		dept := &models.Department{Name: d.Name, DisplayName: d.DisplayName, Description: d.Description, IsActive: true}
		if err := depts.Create(ctx, dept); err != nil {
			return res, fmt.Errorf("create department %s: %w", d.Name, err)
		}
		ids[d.Name] = dept.ID
		res.Departments++
		logger.Info("department seeded", "name", d.Name, "id", dept.ID)
	}

	for _, a := range Accounts {
		if _, err := users.GetByEmail(ctx, a.Email); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return res, fmt.Errorf("look up user %s: %w", a.Email, err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return res, fmt.Errorf("hash password: %w", err)
		}
		user := &models.User{
			Name:         a.Name,
			Email:        a.Email,
			PasswordHash: string(hash),
			Role:         a.Role,
			DepartmentID: ids[a.Department],
		}
		if err := users.Create(ctx, user); err != nil {
			return res, fmt.Errorf("create user %s: %w", a.Email, err)
		}
		res.Users++
		logger.Info("user seeded", "email", a.Email, "role", a.Role, "department", a.Department)
	}
	return res, nil
}
