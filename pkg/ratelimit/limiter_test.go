package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, time.Second)

	// Test initial capacity
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	// Test exhaustion
	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}

	// Test refill after waiting
	time.Sleep(time.Second + 100*time.Millisecond)
	if !tb.Allow() {
		t.Error("Expected tokens to be refilled after waiting")
	}

	// Test reset
	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}

func TestInterval(t *testing.T) {
	iv := NewInterval(200 * time.Millisecond)

	// First operation is always allowed
	if !iv.Allow() {
		t.Error("Expected first operation to be allowed")
	}

	// Immediate second operation is not
	if iv.Allow() {
		t.Error("Expected second operation to be denied within spacing")
	}

	time.Sleep(250 * time.Millisecond)
	if !iv.Allow() {
		t.Error("Expected operation to be allowed after spacing elapsed")
	}
}

func TestIntervalWaitEnforcesSpacing(t *testing.T) {
	iv := NewInterval(100 * time.Millisecond)

	start := time.Now()
	iv.Wait()
	iv.Wait()
	elapsed := time.Since(start)

	if elapsed < 100*time.Millisecond {
		t.Errorf("Expected at least 100ms between waits, got %v", elapsed)
	}
}

func TestIntervalReset(t *testing.T) {
	iv := NewInterval(time.Hour)

	if !iv.Allow() {
		t.Error("Expected first operation to be allowed")
	}
	iv.Reset()
	if !iv.Allow() {
		t.Error("Expected operation to be allowed after reset")
	}
}
