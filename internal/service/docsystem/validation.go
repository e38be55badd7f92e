package docsystem

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"docvault/internal/domain"
	"docvault/internal/domain/repositories"
	docsysRepo "docvault/internal/domain/repositories/docsystem"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ResourceValidator checks that ids referenced by a request resolve before
// they are written into sharing or tag lists.
type ResourceValidator struct {
	users       repositories.UserRepository
	departments repositories.DepartmentRepository
	tags        docsysRepo.TagRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(
	users repositories.UserRepository,
	departments repositories.DepartmentRepository,
	tags docsysRepo.TagRepository,
) *ResourceValidator {
	return &ResourceValidator{
		users:       users,
		departments: departments,
		tags:        tags,
	}
}

// ValidateUserIDs returns ErrValidation unless every id is an existing user.
// ids must already be de-duplicated.
func (v *ResourceValidator) ValidateUserIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := validation.Validate(ids, validation.Each(is.UUID)); err != nil {
		return validationError(fmt.Errorf("user_ids: %w", err))
	}
	n, err := v.users.CountExisting(ctx, ids)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n != len(ids) {
		return domain.Validation("one or more users do not exist")
	}
	return nil
}

// ValidateDepartmentIDs returns ErrValidation unless every id is an existing department.
func (v *ResourceValidator) ValidateDepartmentIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := validation.Validate(ids, validation.Each(is.UUID)); err != nil {
		return validationError(fmt.Errorf("department_ids: %w", err))
	}
	n, err := v.departments.CountExisting(ctx, ids)
	if err != nil {
		return fmt.Errorf("count departments: %w", err)
	}
	if n != len(ids) {
		return domain.Validation("one or more departments do not exist")
	}
	return nil
}

// ValidateOwnedTags returns ErrValidation unless every id is a tag owned by ownerID.
func (v *ResourceValidator) ValidateOwnedTags(ctx context.Context, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := validation.Validate(ids, validation.Each(is.UUID)); err != nil {
		return validationError(fmt.Errorf("tags: %w", err))
	}
	n, err := v.tags.CountOwned(ctx, ownerID, ids)
	if err != nil {
		return fmt.Errorf("count tags: %w", err)
	}
	if n != len(ids) {
		return domain.Validation("one or more tags do not exist")
	}
	return nil
}

// uniqueIDs trims, drops empties and removes duplicates, keeping first-seen order.
// The result is never nil.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// validationError wraps an ozzo error so errors.Is(err, domain.ErrValidation) holds.
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

func normalizeOptionalID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return &trimmed
}
