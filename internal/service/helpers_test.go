package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/persistence"
	"github.com/spec-kit/support-portal/internal/repository/sqlstore"
	"github.com/spec-kit/support-portal/internal/session"
)

// stepClock advances by one second per call so ordering by time is deterministic.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) Subscribe(events.EventType, events.EventHandler) {}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	auth     *AuthService
	tickets  *TicketService
	intake   *IntakeService
	sessions *session.MemoryStore
	users    *sqlstore.UserStore
	events   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := persistence.NewSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "service_test.db")}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(db.Close)
	if err := persistence.MigrateSQLite(ctx, db, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clock := newStepClock()
	rec := &recorder{}
	sessions := session.NewMemoryStore()
	users := sqlstore.NewUserStore(db.DB)

	return &fixture{
		auth: NewAuthService(AuthDependencies{
			UserRepo:   users,
			Sessions:   sessions,
			BcryptCost: bcrypt.MinCost,
			SessionTTL: 7 * 24 * time.Hour,
		}),
		tickets: NewTicketService(TicketDependencies{
			TicketRepo: sqlstore.NewTicketStore(db.DB),
			Dispatcher: rec,
			Clock:      clock.Now,
		}),
		intake: NewIntakeService(IntakeDependencies{
			DemoRequestRepo: sqlstore.NewDemoRequestStore(db.DB),
			Dispatcher:      rec,
			Clock:           clock.Now,
		}),
		sessions: sessions,
		users:    users,
		events:   rec,
	}
}
