package cache

import (
	"sync"
	"time"
)

// Store is a TTL-bounded in-memory cache for read-heavy catalog queries.
// Entries expire after the configured TTL and are swept by a background
// goroutine; writers call Invalidate to drop stale listings immediately.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	ttl      time.Duration
	stopChan chan struct{}
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Config holds cache settings
type Config struct {
	TTL     time.Duration // How long entries stay fresh (default 5m)
	Cleanup time.Duration // Cleanup interval (default 1m)
}

// NewStore creates a new cache store and starts its cleanup loop
func NewStore(cfg Config) *Store {
	if cfg.TTL == 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Minute
	}

	store := &Store{
		entries:  make(map[string]*entry),
		ttl:      cfg.TTL,
		stopChan: make(chan struct{}),
	}

	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine
func (s *Store) Stop() {
	close(s.stopChan)
}

func (s *Store) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if e.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// Get returns the cached value for key, or false if absent or expired.
// Expired entries are treated as misses even before the sweeper runs.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.expiresAt.Before(time.Now()) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the store's TTL
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &entry{
		value:     value,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Invalidate removes the given keys from the cache
func (s *Store) Invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
}

// Len returns the number of entries currently held, including expired
// ones not yet swept
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
