// Package identity handles accounts: registration, login, the user directory
// and department administration.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
)

// errInvalidCredentials never says which half of the pair was wrong.
var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

type authService struct {
	users       repositories.UserRepository
	departments services.DepartmentService
	issuer      auth.TokenIssuer
	verifier    auth.TokenVerifier
	logger      *slog.Logger
}

// NewAuthService creates the authentication service
func NewAuthService(
	users repositories.UserRepository,
	departments services.DepartmentService,
	issuer auth.TokenIssuer,
	verifier auth.TokenVerifier,
	logger *slog.Logger,
) services.AuthService {
	return &authService{
		users:       users,
		departments: departments,
		issuer:      issuer,
		verifier:    verifier,
		logger:      logger,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

var roleRule = validation.By(func(v any) error {
	r, _ := v.(models.Role)
	if r != "" && !r.Valid() {
		return errors.New("must be employee, manager or admin")
	}
	return nil
})

// Register creates an account and returns a token for it. The department may
// be given by id or by name.
func (s *authService) Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validationError(validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required),
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required, validation.RuneLength(config.MinPasswordLength, 0)),
		validation.Field(&req.Role, roleRule),
		validation.Field(&req.Department, validation.Required),
	)); err != nil {
		return nil, err
	}

	dept, err := s.departments.Resolve(ctx, req.Department)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validation("department %q does not exist", req.Department)
		}
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		DepartmentID: dept.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Department = dept

	token, err := s.issuer.IssueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "id", user.ID, "role", user.Role, "department", dept.Name)
	return &services.AuthResult{Token: token, User: user}, nil
}

// Login checks the password with bcrypt and issues a token
func (s *authService) Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug("password mismatch", "user_id", user.ID)
		return nil, errInvalidCredentials
	}

	token, err := s.issuer.IssueToken(user)
	if err != nil {
		return nil, err
	}
	s.populateDepartment(ctx, user)

	s.logger.Info("user logged in", "id", user.ID)
	return &services.AuthResult{Token: token, User: user}, nil
}

// Authenticate verifies the token and reloads the user so role and
// department changes take effect without re-login.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.verifier.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, claims.GetUserID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.populateDepartment(ctx, user)
	return user, nil
}

func (s *authService) populateDepartment(ctx context.Context, user *models.User) {
	dept, err := s.departments.Resolve(ctx, user.DepartmentID)
	if err != nil {
		s.logger.Warn("department lookup failed", "user_id", user.ID, "department_id", user.DepartmentID, "error", err)
		return
	}
	user.Department = dept
}
