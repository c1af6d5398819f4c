package cache

import (
	"strings"
	"sync"
	"time"
)

const keyNamespace = "fairpos"

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is an in-process TTL cache. Expiry is checked on read; entries are
// never evicted proactively. Safe for concurrent use; a refresh replaces the
// whole entry, last writer wins.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New builds a Store around the provided clock. A nil clock defaults to
// time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get returns the value stored at key if present and not expired.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	ent, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(ent.expiresAt) {
		return nil, false
	}
	return ent.value, true
}

// Set stores value at key for the given TTL. A non-positive TTL stores
// nothing.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

// Invalidate removes a single key.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// InvalidateAll clears every entry unconditionally.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Key joins parts into a namespaced cache key, skipping empty parts.
func Key(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}
