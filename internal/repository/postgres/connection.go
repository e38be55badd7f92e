package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docvault/internal/config"
	"docvault/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   repositories.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds table names in one place so queries never hardcode them
type TableNames struct {
	Users       string
	Departments string
	Folders     string
	Documents   string
	Tags        string
	Invoices    string
}

// DefaultTables matches the embedded migrations.
func DefaultTables() *TableNames {
	return &TableNames{
		Users:       "users",
		Departments: "departments",
		Folders:     "folders",
		Documents:   "documents",
		Tags:        "tags",
		Invoices:    "invoice_records",
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// Port 6543 is the conventional PgBouncer transaction-pooler port, which does
// not support prepared statements. In that case QueryExecModeCacheDescribe is
// used unless the connection string sets default_query_exec_mode explicitly.
func CreateConnectionPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	if poolConfig.ConnConfig.Port == 6543 && poolConfig.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
func GetExecutor(ctx context.Context, pool repositories.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
