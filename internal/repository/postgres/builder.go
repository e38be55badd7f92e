package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"docvault/internal/domain/repositories"
)

// Builder returns a squirrel builder using $n placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Select runs a squirrel query and scans every row into dst (a pointer to a slice).
func Select(ctx context.Context, db repositories.DBTX, dst any, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, db, dst, sql, args...)
}

// GetOne runs a squirrel query and returns the first row, or pgx.ErrNoRows.
func GetOne[T any](ctx context.Context, db repositories.DBTX, q squirrel.Sqlizer) (*T, error) {
	var rows []T
	if err := Select(ctx, db, &rows, q); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &rows[0], nil
}

// Count runs a squirrel COUNT query.
func Count(ctx context.Context, db repositories.DBTX, q squirrel.SelectBuilder) (int, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Exec runs a squirrel statement and returns the number of affected rows.
func Exec(ctx context.Context, db repositories.DBTX, q squirrel.Sqlizer) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// NonNil returns an empty slice for nil so array columns never receive NULL.
func NonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// ContainsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters escaped.
func ContainsPattern(s string) string {
	r := make([]rune, 0, len(s)+2)
	r = append(r, '%')
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(append(r, '%'))
}
