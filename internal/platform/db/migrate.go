package db

import (
	"embed"
	"fmt"
	"log/slog"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies the embedded postgres schema migrations.
func Migrate(p *Database, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return 0, fmt.Errorf("resolve sql db handle: %w", err)
	}
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
	applied, err := migrate.Exec(sqlDB, "postgres", source, migrate.Up)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("database migrations applied",
		"event", "db_migrations_applied",
		"module", "internal/platform/db",
		"layer", "platform",
		"applied", applied,
	)
	return applied, nil
}
