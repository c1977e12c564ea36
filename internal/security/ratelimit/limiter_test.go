package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aryan0dhankhar/solkant/internal/reliability/circuitbreaker"
)

func TestMemoryLimiter_BlocksAfterLimit(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "1.2.3.4").Allowed, "attempt %d", i+1)
	}
	d := l.Allow(ctx, "1.2.3.4")
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))

	assert.True(t, l.Allow(ctx, "5.6.7.8").Allowed, "other keys are independent")
}

func TestMemoryLimiter_EmptyKeyAlwaysAllowed(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	defer l.Stop()
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(context.Background(), "").Allowed)
	}
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeCounter) IncrWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) TTL(context.Context, string) (time.Duration, error) {
	return 42 * time.Second, nil
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	rl := NewRedisLimiter(&fakeCounter{}, 2, time.Minute, nil)
	ctx := context.Background()

	assert.True(t, rl.Allow(ctx, "ip").Allowed)
	assert.True(t, rl.Allow(ctx, "ip").Allowed)
	d := rl.Allow(ctx, "ip")
	assert.False(t, d.Allowed)
	assert.Equal(t, 42*time.Second, d.RetryAfter)
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	rl := NewRedisLimiter(&fakeCounter{err: errors.New("connection refused")}, 1, time.Minute, nil)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(context.Background(), "ip").Allowed)
	}
}

type countingCounter struct {
	fakeCounter
	calls int
}

func (c *countingCounter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.calls++
	return c.fakeCounter.IncrWindow(ctx, key, window)
}

func TestRedisLimiter_BreakerUsesFallback(t *testing.T) {
	counter := &countingCounter{fakeCounter: fakeCounter{err: errors.New("connection refused")}}
	fallback := NewMemoryLimiter(1, time.Minute)
	defer fallback.Stop()

	rl := NewRedisLimiter(counter, 10, time.Minute, nil).
		WithBreaker(circuitbreaker.New(2, 1, time.Hour)).
		WithFallback(fallback)
	ctx := context.Background()

	assert.True(t, rl.Allow(ctx, "ip").Allowed)
	assert.False(t, rl.Allow(ctx, "ip").Allowed, "fallback limit applies while redis fails")
	assert.False(t, rl.Allow(ctx, "ip").Allowed)
	assert.Equal(t, 2, counter.calls, "open breaker stops calling redis")
}
