package client

import (
	"testing"
	"time"
)

func TestCacheInvalidateMatchesPathBoundaries(t *testing.T) {
	c := NewCache()
	for _, key := range []string{"/api/tickets", "/api/tickets?status=open", "/api/tickets/t-1", "/api/ticketsx", "/api/auth/session"} {
		c.Set(key, []byte("{}"))
	}

	if dropped := c.Invalidate("/api/tickets"); dropped != 3 {
		t.Fatalf("expected 3 dropped, got %d", dropped)
	}
	if _, ok := c.Get("/api/ticketsx", 0); !ok {
		t.Fatal("unrelated key was dropped")
	}
	if _, ok := c.Get("/api/auth/session", 0); !ok {
		t.Fatal("session key was dropped")
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
}

func TestCacheZeroStalenessNeverExpires(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("/api/tickets", []byte("[]"))

	now = now.Add(24 * time.Hour)
	if _, ok := c.Get("/api/tickets", 0); !ok {
		t.Fatal("expected entry to stay fresh until invalidated")
	}
	if _, ok := c.Get("/api/tickets", time.Hour); ok {
		t.Fatal("expected entry to be stale with a one hour window")
	}
	if c.Len() != 0 {
		t.Fatal("stale entry should be evicted")
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache()
	body := []byte("abc")
	c.Set("k", body)
	body[0] = 'x'

	got, _ := c.Get("k", 0)
	got[1] = 'y'
	again, _ := c.Get("k", 0)
	if string(again) != "abc" {
		t.Fatalf("cache entry was mutated: %q", again)
	}
}

func TestCacheSkipsSetAfterInvalidation(t *testing.T) {
	c := NewCache()
	gen := c.Generation()

	// Nothing is cached yet, but the invalidation still has to win over the in-flight read.
	c.Invalidate("/api/tickets")
	if c.SetIfGeneration("/api/tickets", []byte("[]"), gen) {
		t.Fatal("expected stale read to be discarded")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Len())
	}

	gen = c.Generation()
	if !c.SetIfGeneration("/api/tickets", []byte("[]"), gen) {
		t.Fatal("expected read with current generation to be stored")
	}
	c.Clear()
	if c.Generation() == gen {
		t.Fatal("clear should advance the generation")
	}
}
