package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream 502")

func testConfig(name string) *Config {
	return &Config{
		Name:             name,
		MinRequests:      4,
		FailureThreshold: 0.5,
		MaxConsecutive:   3,
		Interval:         time.Minute,
		Timeout:          50 * time.Millisecond,
		HalfOpenMaxCalls: 1,
	}
}

func TestExecute_PassesThroughResult(t *testing.T) {
	cb := NewCircuitBreaker(testConfig("pass"))
	ctx := context.Background()

	assert.NoError(t, cb.Execute(ctx, func() error { return nil }))
	assert.ErrorIs(t, cb.Execute(ctx, func() error { return errUpstream }), errUpstream)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestExecute_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(testConfig("consecutive"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func() error { return errUpstream })
	}
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(ctx, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, IsOpen(err))
	assert.False(t, called, "open breaker must not call through")
}

func TestExecute_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(testConfig("recovery"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func() error { return errUpstream })
	}
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.GetState())

	require.NoError(t, cb.Execute(ctx, func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestExecute_CanceledContextIsNotAFailure(t *testing.T) {
	cb := NewCircuitBreaker(testConfig("canceled"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := cb.Execute(ctx, func() error { return context.Canceled })
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, StateClosed, cb.GetState())

	done, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, cb.Execute(done, func() error { return nil }), context.Canceled)
}

func TestGetStats(t *testing.T) {
	cb := NewCircuitBreaker(testConfig("stats"))
	ctx := context.Background()

	_ = cb.Execute(ctx, func() error { return nil })
	_ = cb.Execute(ctx, func() error { return errUpstream })

	stats := cb.GetStats()
	assert.Equal(t, "stats", stats.Name)
	assert.Equal(t, uint32(2), stats.TotalCalls)
	assert.Equal(t, uint32(1), stats.Failures)
	assert.InDelta(t, 0.5, stats.FailureRate, 0.0001)
}
