package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := New("u1", "jane", time.Now(), time.Hour)

	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "u1" || got.Username != "jane" {
		t.Errorf("Get() = %+v", got)
	}

	if err := store.Destroy(ctx, sess.ID); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after destroy error = %v, want ErrNotFound", err)
	}
	if err := store.Destroy(ctx, sess.ID); err != nil {
		t.Errorf("second Destroy() error = %v, want nil", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := New("u1", "jane", now, 7*24*time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	now = now.Add(7*24*time.Hour - time.Second)
	if _, err := store.Get(ctx, sess.ID); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	now = now.Add(time.Second)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() at expiry error = %v, want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired session not evicted, Len() = %d", store.Len())
	}
}

func TestMemoryStorePrune(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	_ = store.Set(ctx, New("u1", "a", now.Add(-2*time.Hour), time.Hour))
	_ = store.Set(ctx, New("u2", "b", now, time.Hour))

	if removed := store.Prune(); removed != 1 {
		t.Errorf("Prune() = %d, want 1", removed)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestMemoryStoreConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess := New(fmt.Sprintf("u%d", i), fmt.Sprintf("user%d", i), time.Now(), time.Hour)
			ids[i] = sess.ID
			_ = store.Set(ctx, sess)
			_, _ = store.Get(ctx, sess.ID)
		}(i)
	}
	wg.Wait()

	for i, id := range ids {
		got, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get(%d) error = %v", i, err)
		}
		if got.UserID != fmt.Sprintf("u%d", i) {
			t.Errorf("session %d belongs to %s", i, got.UserID)
		}
	}
}

func TestNewIssuesDistinctIDs(t *testing.T) {
	a := New("u1", "jane", time.Now(), time.Hour)
	b := New("u1", "jane", time.Now(), time.Hour)
	if a.ID == b.ID {
		t.Fatal("New() reused a session id")
	}
}
