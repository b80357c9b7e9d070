package guard

import (
	"sync"
	"time"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RateLimiter implements a sliding window rate limiter keyed by caller-chosen
// strings (client IP, account ID). Each limiter instance covers one route
// group; limiters are constructed in main and passed to the middleware that
// uses them, never shared through package state.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration

	lastPurge time.Time
}

// NewRateLimiter creates a rate limiter with the given limit per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
	}
}

// Check records an attempt for key and reports whether it is within limits.
// Denied attempts are not recorded, so a throttled client that keeps retrying
// does not push its own window further out.
func (rl *RateLimiter) Check(key string) Decision {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.purgeLocked(now)

	cutoff := now.Add(-rl.window)
	entries := rl.windows[key]
	valid := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.windows[key] = valid
		return Decision{
			Allowed:    false,
			RetryAfter: valid[0].Sub(cutoff),
		}
	}

	rl.windows[key] = append(valid, now)
	return Decision{Allowed: true}
}

// purgeLocked drops keys whose whole window has expired, at most once per
// window length. Keeps the map from growing without bound under churning
// client IPs.
func (rl *RateLimiter) purgeLocked(now time.Time) {
	if now.Sub(rl.lastPurge) < rl.window {
		return
	}
	rl.lastPurge = now

	cutoff := now.Add(-rl.window)
	for key, entries := range rl.windows {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(rl.windows, key)
		}
	}
}
