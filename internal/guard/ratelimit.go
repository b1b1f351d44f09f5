package guard

import (
	"fmt"
	"sync"
	"time"
)

// Result reports whether a request may proceed.
type Result struct {
	Allowed    bool
	Reason     string
	RetryAfter time.Duration
}

// RateLimiter implements a sliding window rate limiter.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given limit per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Check records a hit for key and reports whether it is within the limit.
// Rejected hits are not recorded.
func (rl *RateLimiter) Check(key string) Result {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
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
		retry := rl.window
		if len(valid) > 0 {
			retry = valid[0].Add(rl.window).Sub(now)
		}
		return Result{
			Allowed:    false,
			Reason:     fmt.Sprintf("rate limit exceeded: %d/%s", rl.limit, rl.window),
			RetryAfter: retry,
		}
	}

	rl.windows[key] = append(valid, now)
	return Result{Allowed: true}
}

// Sweep drops keys whose hits have all expired.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, entries := range rl.windows {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(rl.windows, key)
		}
	}
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}
