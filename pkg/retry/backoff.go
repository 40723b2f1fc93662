package retry

import (
	"math"
	"time"
)

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the delay to apply before the given attempt
	NextDelay(attempt int) time.Duration
}

// ConstantBackoff waits the same duration between every attempt.
// A zero delay retries immediately.
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns the constant delay
func (b *ConstantBackoff) NextDelay(int) time.Duration {
	return b.Delay
}

// NoBackoff retries immediately with no added delay
func NoBackoff() *ConstantBackoff {
	return &ConstantBackoff{Delay: 0}
}

// ExponentialBackoff implements exponential backoff
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultExponentialBackoff returns a backoff with sensible defaults
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2.0,
	}
}

// NextDelay returns the delay for the given attempt (1-based)
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(b.BaseDelay) * math.Pow(b.Multiplier, float64(attempt-1))
	if time.Duration(delay) > b.MaxDelay {
		return b.MaxDelay
	}
	return time.Duration(delay)
}
