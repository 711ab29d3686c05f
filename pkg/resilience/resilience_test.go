package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store offline")

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), "list-documents", RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errStore
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryGivesUp(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), "list-documents", RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond}, func(context.Context) error {
		attempts++
		return errStore
	})
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, 2, attempts)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, "list-documents", RetryConfig{MaxAttempts: 5}, func(context.Context) error {
		calls++
		return errStore
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), "decode-event", RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond}, func(context.Context) error {
		attempts++
		return Permanent(errStore)
	})
	assert.ErrorIs(t, err, errStore)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, attempts)
	assert.Nil(t, Permanent(nil))
}

func TestComputeDelayCapped(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 2 * time.Second, Multiplier: 10, JitterFraction: 0.1}
	assert.Equal(t, 2*time.Second, computeDelay(5, cfg))
	d := computeDelay(1, cfg)
	assert.GreaterOrEqual(t, d, 900*time.Millisecond)
	assert.LessOrEqual(t, d, 1100*time.Millisecond)
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "rebuild", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = WithTimeout(context.Background(), 0, "rebuild", func(ctx context.Context) error { return errStore })
	assert.ErrorIs(t, err, errStore)
	release := make(chan struct{})
	defer close(release)
	var timeoutErr *TimeoutError
	err = WithTimeout(context.Background(), time.Millisecond, "rebuild", func(context.Context) error {
		<-release
		return nil
	})
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "rebuild", timeoutErr.Op)
}

func TestCallReturnsValue(t *testing.T) {
	v, err := Call(context.Background(), time.Second, "rebuild", func(context.Context) (string, error) {
		return "build-1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "build-1", v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	release := make(chan struct{})
	defer close(release)
	v, err = Call(ctx, time.Second, "rebuild", func(context.Context) (string, error) {
		<-release
		return "late", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, v)
}

func TestCircuitBreakerLifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("redis-cache", CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Minute})
	cb.now = func() time.Time { return now }
	assert.Equal(t, "redis-cache", cb.Name())

	fail := func() error { return errStore }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Execute(fail), errStore)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.ErrorIs(t, cb.Execute(fail), errStore)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(time.Minute)
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.GetState())

	cb.Execute(fail)
	cb.Execute(fail)
	assert.Equal(t, StateOpen, cb.GetState())
	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker("redis-cache", CircuitBreakerConfig{
		FailureThreshold: 1,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	err := cb.Execute(func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Empty(t, transitions)

	cb.Execute(func() error { return errStore })
	assert.Equal(t, StateOpen, cb.GetState())
	cb.Reset()
	assert.Equal(t, []string{"closed->open", "open->closed"}, transitions)
}
