package identity

import (
	"context"
	"errors"
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

type userService struct {
	users       repositories.UserRepository
	departments services.DepartmentService
	logger      *slog.Logger
}

// NewUserService creates the user directory and employee admin service
func NewUserService(
	users repositories.UserRepository,
	departments services.DepartmentService,
	logger *slog.Logger,
) services.UserService {
	return &userService{
		users:       users,
		departments: departments,
		logger:      logger,
	}
}

// ListUsers returns every user sorted by name with departments attached
func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	cache := map[string]*models.Department{}
	for i := range users {
		id := users[i].DepartmentID
		dept, ok := cache[id]
		if !ok {
			dept, err = s.departments.Resolve(ctx, id)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			cache[id] = dept
		}
		users[i].Department = dept
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dept, err := s.departments.Resolve(ctx, user.DepartmentID); err == nil {
		user.Department = dept
	}
	return user, nil
}

func validateEmployee(req *services.EmployeeRequest, creating bool) error {
	passwordRules := []validation.Rule{validation.RuneLength(config.MinPasswordLength, 0)}
	if creating {
		passwordRules = append(passwordRules, validation.Required)
	}
	return validationError(validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required),
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, passwordRules...),
		validation.Field(&req.Role, validation.Required, roleRule),
		validation.Field(&req.Department, validation.Required),
	))
}

func (s *userService) normalize(req *services.EmployeeRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

func (s *userService) department(ctx context.Context, ref string) (*models.Department, error) {
	dept, err := s.departments.Resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validation("department %q does not exist", ref)
		}
		return nil, err
	}
	return dept, nil
}

func (s *userService) CreateEmployee(ctx context.Context, caller models.CurrentUser, req *services.EmployeeRequest) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	s.normalize(req)
	if err := validateEmployee(req, true); err != nil {
		return nil, err
	}
	dept, err := s.department(ctx, req.Department)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		DepartmentID: dept.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Department = dept

	s.logger.Info("employee created", "id", user.ID, "role", user.Role, "by", caller.ID)
	return user, nil
}

// UpdateEmployee replaces profile fields; the password changes only when given
func (s *userService) UpdateEmployee(ctx context.Context, caller models.CurrentUser, id string, req *services.EmployeeRequest) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	s.normalize(req)
	if err := validateEmployee(req, false); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dept, err := s.department(ctx, req.Department)
	if err != nil {
		return nil, err
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	user.DepartmentID = dept.ID
	user.PasswordHash = ""
	if req.Password != "" {
		if user.PasswordHash, err = hashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	user.Department = dept

	s.logger.Info("employee updated", "id", id, "role", user.Role, "by", caller.ID)
	return user, nil
}

func (s *userService) DeleteEmployee(ctx context.Context, caller models.CurrentUser, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if caller.ID == id {
		return domain.Validation("cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	s.logger.Info("employee deleted", "id", id, "by", caller.ID)
	return nil
}
