package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrIntegrity    = errors.New("data integrity violation")

	// ErrAccessDenied: the entity exists but the caller may not see its contents.
	ErrAccessDenied = fmt.Errorf("access denied: %w", ErrForbidden)

	// ErrPermissionDenied: the caller attempted a mutation reserved to the
	// owner or an elevated role.
	ErrPermissionDenied = fmt.Errorf("permission denied: %w", ErrForbidden)
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder, tag, department, user
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// IntegrityError reports stored data that violates a structural invariant,
// such as a folder parent chain that loops or points at a missing folder.
type IntegrityError struct {
	FolderID string
	Reason   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("folder %s: %s", e.FolderID, e.Reason)
}

func (e *IntegrityError) StatusCode() int {
	return http.StatusInternalServerError
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// NotFound wraps ErrNotFound with the entity kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Validation wraps ErrValidation with a message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
