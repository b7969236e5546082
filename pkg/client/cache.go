package client

import (
	"strings"
	"sync"
	"time"
)

// Cache holds response bodies keyed by request path and query. An entry is served while it is
// younger than the staleness window the caller asks for; a window <= 0 means the entry stays
// fresh until invalidated.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
	// gen advances on every Invalidate and Clear, including ones that drop nothing, so a read
	// that started before an invalidation cannot repopulate the cache with its older body.
	gen uint64
}

type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry), now: time.Now}
}

// Get returns a copy of the cached body when it is still fresh.
func (c *Cache) Get(key string, staleAfter time.Duration) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if staleAfter > 0 && c.now().Sub(entry.fetchedAt) >= staleAfter {
		delete(c.entries, key)
		return nil, false
	}
	return append([]byte(nil), entry.body...), true
}

func (c *Cache) Set(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{body: append([]byte(nil), body...), fetchedAt: c.now()}
}

// Generation reports the current invalidation generation.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfGeneration stores body only when no invalidation happened since gen was read.
func (c *Cache) SetIfGeneration(key string, body []byte, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.entries[key] = cacheEntry{body: append([]byte(nil), body...), fetchedAt: c.now()}
	return true
}

// Invalidate drops every entry whose key is one of the prefixes or starts with prefix+"/" or
// prefix+"?". It returns the number of dropped entries.
func (c *Cache) Invalidate(prefixes ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	dropped := 0
	for key := range c.entries {
		for _, prefix := range prefixes {
			if matchesPrefix(key, prefix) {
				delete(c.entries, key)
				dropped++
				break
			}
		}
	}
	return dropped
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries = make(map[string]cacheEntry)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func matchesPrefix(key, prefix string) bool {
	if key == prefix {
		return true
	}
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	next := key[len(prefix)]
	return next == '/' || next == '?'
}
