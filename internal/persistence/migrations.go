package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// MigratePostgres applies the embedded postgres migrations.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return migrate(ctx, db, "postgres", "migrations/postgres", logger)
}

// MigrateSQLite applies the embedded sqlite migrations.
func MigrateSQLite(ctx context.Context, s *SQLite, logger *zap.Logger) error {
	db, err := s.DB.DB()
	if err != nil {
		return err
	}
	return migrate(ctx, db, "sqlite3", "migrations/sqlite", logger)
}

func migrate(ctx context.Context, db *sql.DB, dialect, dir string, logger *zap.Logger) error {
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return err
	}
	if logger != nil {
		logger.Info("migrations applied", zap.String("dialect", dialect), zap.Int64("version", version))
	}
	return nil
}
