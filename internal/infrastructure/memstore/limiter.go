package memstore

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// LimitInfo is a read-only projection of an identifier's sliding window
type LimitInfo struct {
	// Current is the number of requests inside the window
	Current int `json:"current"`
	// RemainingTime is the number of seconds until the oldest request
	// inside the window falls out of it
	RemainingTime int `json:"remaining_time"`
}

// LimiterStats reports limiter-level counters
type LimiterStats struct {
	TotalIdentifiers int       `json:"total_identifiers"`
	TotalRequests    int       `json:"total_requests"`
	LastCleanup      time.Time `json:"last_cleanup"`
}

// RateLimiter is a concurrency-safe sliding-window rate limiter. Each
// identifier maps to the ordered timestamps of its admitted requests; the
// sequence is compacted on every access, and identifiers that have gone
// quiet are dropped by an interval-gated sweep so memory stays bounded.
type RateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	lastCleanup time.Time
	interval    time.Duration
	// sweepWindow is the lookback used when the sweep compacts identifiers
	// it is not otherwise touching
	sweepWindow time.Duration
	logger      *zap.Logger
}

// NewRateLimiter creates a limiter whose sweep discards timestamps older
// than sweepWindow
func NewRateLimiter(sweepWindow time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		requests:    make(map[string][]time.Time),
		lastCleanup: time.Now(),
		interval:    defaultCleanupInterval,
		sweepWindow: sweepWindow,
		logger:      logger,
	}
}

// IsRateLimited reports whether identifier has reached limit requests within
// the trailing window, admitting and recording the request otherwise. A
// limited request is not recorded, so rejections carry no cost toward future
// windows. A limit of zero (or less) always limits. A window of zero or less
// makes every prior timestamp stale and therefore never limits; callers must
// not pass one.
func (rl *RateLimiter) IsRateLimited(identifier string, limit int, window time.Duration) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweepLocked(now)

	if limit <= 0 {
		return true
	}

	kept := compact(rl.requests[identifier], now.Add(-window))
	if len(kept) >= limit {
		rl.requests[identifier] = kept
		return true
	}

	rl.requests[identifier] = append(kept, now)
	return false
}

// Info returns the current window occupancy for identifier without mutating
// any state
func (rl *RateLimiter) Info(identifier string, window time.Duration) LimitInfo {
	now := time.Now()
	cutoff := now.Add(-window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	var current int
	var oldest time.Time
	for _, ts := range rl.requests[identifier] {
		if !ts.After(cutoff) {
			continue
		}
		if current == 0 || ts.Before(oldest) {
			oldest = ts
		}
		current++
	}

	info := LimitInfo{Current: current}
	if current > 0 {
		remaining := window - now.Sub(oldest)
		if remaining > 0 {
			info.RemainingTime = int(remaining.Seconds())
		}
	}
	return info
}

// Clear removes all recorded requests for identifier
func (rl *RateLimiter) Clear(identifier string) {
	rl.mu.Lock()
	delete(rl.requests, identifier)
	rl.mu.Unlock()
}

// Stats reports the number of tracked identifiers and recorded requests
func (rl *RateLimiter) Stats() LimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	total := 0
	for _, timestamps := range rl.requests {
		total += len(timestamps)
	}
	return LimiterStats{
		TotalIdentifiers: len(rl.requests),
		TotalRequests:    total,
		LastCleanup:      rl.lastCleanup,
	}
}

// sweepLocked compacts every identifier against the sweep window and removes
// the empty ones, at most once per interval
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastCleanup) < rl.interval {
		return
	}

	cutoff := now.Add(-rl.sweepWindow)
	removed := 0
	for identifier, timestamps := range rl.requests {
		kept := compact(timestamps, cutoff)
		if len(kept) == 0 {
			delete(rl.requests, identifier)
			removed++
			continue
		}
		rl.requests[identifier] = kept
	}
	rl.lastCleanup = now

	if removed > 0 {
		rl.logger.Debug("evicted idle rate limit identifiers", zap.Int("count", removed))
	}
}

// compact keeps only timestamps strictly after cutoff, preserving order
func compact(timestamps []time.Time, cutoff time.Time) []time.Time {
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
