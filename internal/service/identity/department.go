package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
)

type departmentService struct {
	departments repositories.DepartmentRepository
	users       repositories.UserRepository
	logger      *slog.Logger
}

// NewDepartmentService creates the department service
func NewDepartmentService(
	departments repositories.DepartmentRepository,
	users repositories.UserRepository,
	logger *slog.Logger,
) services.DepartmentService {
	return &departmentService{
		departments: departments,
		users:       users,
		logger:      logger,
	}
}

func requireAdmin(caller models.CurrentUser) error {
	if caller.Role != models.RoleAdmin {
		return fmt.Errorf("admin access required: %w", domain.ErrPermissionDenied)
	}
	return nil
}

func (s *departmentService) ListActive(ctx context.Context) ([]models.Department, error) {
	return s.departments.ListActive(ctx)
}

// Create stores the name lowercased. Display name defaults to the given name.
func (s *departmentService) Create(ctx context.Context, caller models.CurrentUser, req *services.CreateDepartmentRequest) (*models.Department, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validationError(validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, config.MaxDepartmentNameLength)),
		validation.Field(&req.DisplayName, validation.RuneLength(0, config.MaxDepartmentNameLength)),
	)); err != nil {
		return nil, err
	}

	dept := &models.Department{
		Name:        strings.ToLower(req.Name),
		DisplayName: req.DisplayName,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if dept.DisplayName == "" {
		dept.DisplayName = req.Name
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}

	s.logger.Info("department created", "id", dept.ID, "name", dept.Name, "by", caller.ID)
	return dept, nil
}

func (s *departmentService) Update(ctx context.Context, caller models.CurrentUser, id string, req *services.UpdateDepartmentRequest) (*models.Department, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if err := validationError(validation.Validate(name, validation.Required, validation.RuneLength(1, config.MaxDepartmentNameLength))); err != nil {
			return nil, err
		}
		dept.DisplayName = name
	}
	if req.Description != nil {
		dept.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, err
	}

	s.logger.Info("department updated", "id", id, "is_active", dept.IsActive, "by", caller.ID)
	return dept, nil
}

// Delete refuses while any user still belongs to the department
func (s *departmentService) Delete(ctx context.Context, caller models.CurrentUser, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if _, err := s.departments.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.users.CountByDepartment(ctx, id)
	if err != nil {
		return fmt.Errorf("count department users: %w", err)
	}
	if n > 0 {
		return &domain.ConflictError{
			Message:      "cannot delete department with employees",
			ResourceType: "department",
			ResourceID:   id,
		}
	}
	if err := s.departments.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("department deleted", "id", id, "by", caller.ID)
	return nil
}

// Resolve looks up by id when ref is a UUID, otherwise by lowercase name
func (s *departmentService) Resolve(ctx context.Context, ref string) (*models.Department, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.NotFound("department", ref)
	}
	if validation.Validate(ref, is.UUID) == nil {
		return s.departments.GetByID(ctx, ref)
	}
	return s.departments.GetByName(ctx, strings.ToLower(ref))
}
