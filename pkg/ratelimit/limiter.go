package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity     int
	tokens       int
	refillPeriod time.Duration
	lastRefill   time.Time
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.mu.Lock()
		timeUntilRefill := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if timeUntilRefill > 0 {
			time.Sleep(timeUntilRefill)
		} else {
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

func (tb *TokenBucket) refill() {
	now := time.Now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}

// Interval enforces a fixed minimum spacing between consecutive operations.
// Used to pace chat message delivery.
type Interval struct {
	spacing time.Duration
	last    time.Time
	mu      sync.Mutex
}

// NewInterval creates an interval pacer with the given spacing
func NewInterval(spacing time.Duration) *Interval {
	return &Interval{spacing: spacing}
}

// Allow reports whether enough time has passed since the last operation
func (iv *Interval) Allow() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	now := time.Now()
	if iv.last.IsZero() || now.Sub(iv.last) >= iv.spacing {
		iv.last = now
		return true
	}
	return false
}

// Wait blocks until the spacing has elapsed, then records the operation
func (iv *Interval) Wait() {
	for {
		iv.mu.Lock()
		now := time.Now()
		if iv.last.IsZero() || now.Sub(iv.last) >= iv.spacing {
			iv.last = now
			iv.mu.Unlock()
			return
		}
		remaining := iv.spacing - now.Sub(iv.last)
		iv.mu.Unlock()
		time.Sleep(remaining)
	}
}

// Reset clears the pacer state
func (iv *Interval) Reset() {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.last = time.Time{}
}
