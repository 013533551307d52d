package validation

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket per key. The input layer uses it to
// debounce held keys that would otherwise re-trigger an action every frame.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	keys        map[string]*bucket
	now         func() time.Time
	mu          sync.Mutex
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a limiter allowing maxRequests per window per key.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(maxRequests, window, time.Now)
}

// NewRateLimiterWithClock is NewRateLimiter with an injectable clock.
func NewRateLimiterWithClock(maxRequests int, window time.Duration, now func() time.Time) *RateLimiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		keys:        make(map[string]*bucket),
		now:         now,
	}
}

// Allow checks if an action should be allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.keys[key]
	if !exists {
		b = &bucket{tokens: rl.maxRequests, lastRefill: now}
		rl.keys[key] = b
	}

	elapsed := now.Sub(b.lastRefill)
	if elapsed > 0 && b.tokens < rl.maxRequests && rl.window > 0 {
		windowsPassed := float64(elapsed) / float64(rl.window)
		tokensToAdd := int(float64(rl.maxRequests) * windowsPassed)

		if tokensToAdd > 0 {
			b.tokens += tokensToAdd
			if b.tokens > rl.maxRequests {
				b.tokens = rl.maxRequests
			}
			b.lastRefill = now
		}
	}

	if b.tokens > 0 {
		b.tokens--
		if b.tokens == rl.maxRequests-1 {
			b.lastRefill = now
		}
		return true
	}

	return false
}

// Reset forgets the state of a key.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	delete(rl.keys, key)
	rl.mu.Unlock()
}
