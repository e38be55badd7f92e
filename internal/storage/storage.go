package storage

import (
	"context"
	"fmt"
	"log/slog"

	"docvault/internal/config"
	docsysSvc "docvault/internal/domain/services/docsystem"
)

// New builds the FileStore selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (docsysSvc.FileStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.LocalDir)
	case "minio":
		return NewMinioStore(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
