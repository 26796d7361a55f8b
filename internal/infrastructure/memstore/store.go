package memstore

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// defaultCleanupInterval gates the full eviction sweep. Between sweeps every
// read still checks the entry it touches, so stale values never leak through.
const defaultCleanupInterval = 5 * time.Minute

type entry struct {
	value     any
	expiresAt time.Time // zero means the entry never expires
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Stats reports estimated store counters without forcing an eviction pass
type Stats struct {
	TotalKeys   int       `json:"total_keys"`
	ExpiredKeys int       `json:"expired_keys"`
	LastCleanup time.Time `json:"last_cleanup"`
}

// Store is a concurrency-safe in-memory key-value store with per-entry TTLs.
// Expired entries are evicted on read and by a full sweep that runs at most
// once per cleanup interval, triggered from mutating calls rather than a
// background goroutine. All operations are total: none of them can fail.
type Store struct {
	mu          sync.Mutex
	entries     map[string]entry
	lastCleanup time.Time
	interval    time.Duration
	logger      *zap.Logger
}

// New creates an empty store
func New(logger *zap.Logger) *Store {
	return &Store{
		entries:     make(map[string]entry),
		lastCleanup: time.Now(),
		interval:    defaultCleanupInterval,
		logger:      logger,
	}
}

// Set stores value under key. A zero ttl means the entry never expires.
// Any existing entry for key is overwritten unconditionally.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	now := time.Now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	s.sweepLocked(now)
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
}

// Get returns the value stored under key, or def when the key is absent or
// expired. An expired entry is evicted as a side effect.
func (s *Store) Get(key string, def any) any {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return def
	}
	if e.expired(now) {
		delete(s.entries, key)
		return def
	}
	return e.value
}

// Exists reports whether key holds an unexpired value, evicting it when stale
func (s *Store) Exists(key string) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if e.expired(now) {
		delete(s.entries, key)
		return false
	}
	return true
}

// Delete removes key and reports whether an entry was removed
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Increment adds amount to the integer counter stored under key, starting
// from zero when the key is absent or holds a non-integer value. Counters
// never expire; any TTL from an earlier Set on the same key is cleared.
func (s *Store) Increment(key string, amount int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if e, ok := s.entries[key]; ok {
		switch v := e.value.(type) {
		case int64:
			current = v
		case int:
			current = int64(v)
		}
	}

	current += amount
	s.entries[key] = entry{value: current}
	return current
}

// Clear removes all entries
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Stats counts keys and currently-expired keys without evicting anything
func (s *Store) Stats() Stats {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for _, e := range s.entries {
		if e.expired(now) {
			expired++
		}
	}
	return Stats{
		TotalKeys:   len(s.entries),
		ExpiredKeys: expired,
		LastCleanup: s.lastCleanup,
	}
}

// sweepLocked drops every expired entry, at most once per interval
func (s *Store) sweepLocked(now time.Time) {
	if now.Sub(s.lastCleanup) < s.interval {
		return
	}

	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	s.lastCleanup = now

	if removed > 0 {
		s.logger.Debug("evicted expired cache entries", zap.Int("count", removed))
	}
}
