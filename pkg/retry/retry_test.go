package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "likeswatch/pkg/errors"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, &Config{MaxAttempts: 3, Backoff: NoBackoff()})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, &Config{MaxAttempts: 3, Backoff: NoBackoff()})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoReturnsLastError(t *testing.T) {
	calls := 0
	first := errors.New("first failure")
	second := errors.New("second failure")

	err := Do(func() error {
		calls++
		if calls == 1 {
			return first
		}
		return second
	}, &Config{MaxAttempts: 2, Backoff: NoBackoff()})

	assert.Equal(t, 2, calls)
	assert.Equal(t, second, err)
}

func TestDoOnRetryObservesPreviousError(t *testing.T) {
	var observed []error
	boom := errors.New("boom")

	_ = Do(func() error {
		return boom
	}, &Config{
		MaxAttempts: 3,
		Backoff:     NoBackoff(),
		OnRetry: func(attempt int, err error) {
			observed = append(observed, err)
		},
	})

	require.Len(t, observed, 2)
	assert.Equal(t, boom, observed[0])
}

func TestDoRespectsRetryIf(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeNotFound, "gone")
	}, &Config{MaxAttempts: 5, Backoff: NoBackoff(), RetryIf: DefaultRetryIf})

	assert.Equal(t, 1, calls)
	assert.True(t, errs.Is(err, errs.ErrorTypeNotFound))
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(func() error {
		return errors.New("never retried")
	}, &Config{MaxAttempts: 3, Backoff: &ConstantBackoff{Delay: time.Second}, Context: ctx})

	assert.ErrorIs(t, err, context.Canceled)
}
