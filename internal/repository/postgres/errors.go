package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"docvault/internal/domain"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	return false
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23503 = foreign_key_violation
		return pgErr.Code == "23503"
	}
	return false
}

// IsPgCheckError checks if error is a check constraint violation
func IsPgCheckError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23514 = check_violation
		return pgErr.Code == "23514"
	}
	return false
}

// IsPgInvalidTextError checks if error is a malformed literal such as a bad UUID
func IsPgInvalidTextError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 22P02 = invalid_text_representation
		return pgErr.Code == "22P02"
	}
	return false
}

// MapError translates driver errors into domain errors for one entity.
// Context errors pass through untouched.
func MapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch {
	case IsPgNoRowsError(err), IsPgInvalidTextError(err):
		return domain.NotFound(entity, id)
	case IsPgDuplicateError(err):
		return &domain.ConflictError{
			Message:      fmt.Sprintf("%s already exists", entity),
			ResourceType: entity,
			ResourceID:   id,
		}
	case IsPgForeignKeyError(err):
		return fmt.Errorf("%s %s: referenced entity missing or still in use: %w", entity, id, domain.ErrConflict)
	case IsPgCheckError(err):
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
	}
	return fmt.Errorf("%s %s: %w", entity, id, err)
}
