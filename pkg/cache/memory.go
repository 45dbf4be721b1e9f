package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// MemoryStore implements Store as a process-local TTL map. It is used in
// tests and as a fallback when no Redis is configured; it does not share
// entries across processes. Expired entries are removed lazily on access.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

// Get retrieves a cached value by key.
// Returns ErrCacheMiss if the key doesn't exist or has expired.
func (s *MemoryStore) Get(_ context.Context, key Key) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key.String()]
	s.mu.RUnlock()

	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}
	if entry.expired() {
		s.mu.Lock()
		delete(s.entries, key.String())
		s.mu.Unlock()
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return entry.value, nil
}

// Set stores a value with the given TTL.
func (s *MemoryStore) Set(_ context.Context, key Key, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	s.entries[key.String()] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	s.mu.Unlock()

	CacheSize.WithLabelValues("memory").Add(float64(len(value)))
	return nil
}

// Delete evicts a key.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	delete(s.entries, key.String())
	s.mu.Unlock()
	return nil
}

// Len returns the number of live entries (for tests).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
