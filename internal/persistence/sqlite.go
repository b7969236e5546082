package persistence

import (
	"context"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	moderncsqlite "modernc.org/sqlite"

	"github.com/spec-kit/support-portal/internal/config"
)

// CaseFoldFunc is a SQL function that lowercases its argument with full Unicode rules. The
// builtin LOWER only folds ASCII.
const CaseFoldFunc = "casefold"

func init() {
	moderncsqlite.MustRegisterDeterministicScalarFunction(CaseFoldFunc, 1, casefold)
}

func casefold(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// SQLite wraps a gorm handle on an embedded database file.
type SQLite struct {
	DB *gorm.DB
}

// NewSQLite opens (and creates if needed) the database file.
func NewSQLite(cfg config.SQLiteConfig, log *zap.Logger) (*SQLite, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	gormLogger := logger.Default
	if !cfg.LogMode {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        cfg.Path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite",
	}, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if log != nil {
		log.Info("opened sqlite database", zap.String("path", cfg.Path))
	}
	return &SQLite{DB: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() {
	if s == nil || s.DB == nil {
		return
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Ping verifies the database file is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
