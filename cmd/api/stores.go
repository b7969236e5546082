package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/api/http/handlers"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/persistence"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/repository/sqlstore"
	"github.com/spec-kit/support-portal/internal/session"
)

// backends holds the repositories for the configured driver plus everything health checks
// and shutdown need.
type backends struct {
	users    repository.UserRepository
	tickets  repository.TicketRepository
	demos    repository.DemoRequestRepository
	sessions session.Store
	pingers  map[string]handlers.Pinger
	closers  []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func newBackends() *backends {
	return &backends{pingers: map[string]handlers.Pinger{}}
}

func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := newBackends()
	if err := b.openDatabase(ctx, cfg, logger); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.openSessions(ctx, cfg, logger); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backends) openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Database.Driver {
	case "postgres":
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pg.Close)
		b.pingers["postgres"] = pg
		if cfg.Database.RunMigrations {
			if err := persistence.MigratePostgres(ctx, pg.PoolHandle(), logger); err != nil {
				return fmt.Errorf("migrate postgres: %w", err)
			}
		}
		pool := pg.PoolHandle()
		b.users = repository.NewUserRepository(pool)
		b.tickets = repository.NewTicketRepository(pool)
		b.demos = repository.NewDemoRequestRepository(pool)
	case "sqlite":
		db, err := persistence.NewSQLite(cfg.SQLite, logger)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, db.Close)
		b.pingers["sqlite"] = db
		if cfg.Database.RunMigrations {
			if err := persistence.MigrateSQLite(ctx, db, logger); err != nil {
				return fmt.Errorf("migrate sqlite: %w", err)
			}
		}
		b.users = sqlstore.NewUserStore(db.DB)
		b.tickets = sqlstore.NewTicketStore(db.DB)
		b.demos = sqlstore.NewDemoRequestStore(db.DB)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return nil
}

func (b *backends) openSessions(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Session.Store {
	case "redis":
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, rdb.Close)
		b.pingers["redis"] = rdb
		b.sessions = session.NewRedisStore(rdb.Client)
	case "memory":
		store := session.NewMemoryStore()
		pruneCtx, cancel := context.WithCancel(ctx)
		b.closers = append(b.closers, cancel)
		go pruneSessions(pruneCtx, store, logger)
		b.sessions = store
	default:
		return fmt.Errorf("unsupported session store %q", cfg.Session.Store)
	}
	logger.Info("session store ready", zap.String("store", cfg.Session.Store))
	return nil
}

func pruneSessions(ctx context.Context, store *session.MemoryStore, logger *zap.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Prune(); n > 0 {
				logger.Debug("pruned expired sessions", zap.Int("count", n))
			}
		}
	}
}
