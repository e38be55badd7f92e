package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"docvault/internal/config"
	"docvault/internal/repository/postgres"
	"docvault/internal/seed"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Roll back all migrations before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only apply migrations, don't insert demo data")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProduction() && *dropTables {
		log.Fatalf("BLOCKED: --drop-tables is not allowed in production")
	}

	logger := config.NewLogger(cfg.Log, os.Stdout)
	ctx := context.Background()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if *dropTables {
		if err := postgres.Reset(ctx, pool, logger); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}
	if err := postgres.Migrate(ctx, pool, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if *schemaOnly {
		logger.Info("schema ready")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.DefaultTables(),
		Logger: logger,
	}
	res, err := seed.Run(ctx, postgres.NewDepartmentRepository(repoConfig), postgres.NewUserRepository(repoConfig), logger)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	logger.Info("seed complete", "departments_created", res.Departments, "users_created", res.Users)
}
