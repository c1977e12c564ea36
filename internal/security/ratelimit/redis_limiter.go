package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/solkant/internal/reliability/circuitbreaker"
)

// Counter is the fixed-window primitive the Redis limiter needs.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RedisLimiter shares a fixed-window counter across server replicas.
// When Redis keeps failing the breaker opens and checks go to the fallback
// limiter, or are allowed when there is none.
type RedisLimiter struct {
	counter  Counter
	breaker  *circuitbreaker.CircuitBreaker
	fallback Limiter
	logger   *slog.Logger
	prefix   string
	limit    int
	window   time.Duration
	timeout  time.Duration
}

func NewRedisLimiter(counter Counter, limit int, window time.Duration, logger *slog.Logger) *RedisLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if window <= 0 {
		window = time.Minute
	}
	breaker := circuitbreaker.New(5, 1, 30*time.Second)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("redis rate limiter breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return &RedisLimiter{
		counter: counter,
		breaker: breaker,
		logger:  logger,
		prefix:  "solkant:ratelimit:",
		limit:   limit,
		window:  window,
		timeout: 250 * time.Millisecond,
	}
}

// WithFallback sets the limiter used while Redis is unavailable.
func (rl *RedisLimiter) WithFallback(fallback Limiter) *RedisLimiter {
	rl.fallback = fallback
	return rl
}

// WithBreaker replaces the default breaker.
func (rl *RedisLimiter) WithBreaker(cb *circuitbreaker.CircuitBreaker) *RedisLimiter {
	rl.breaker = cb
	return rl
}

func (rl *RedisLimiter) degraded(ctx context.Context, key string) Decision {
	if rl.fallback == nil {
		return Decision{Allowed: true}
	}
	return rl.fallback.Allow(ctx, key)
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	if key == "" || rl.limit <= 0 {
		return Decision{Allowed: true}
	}
	if !rl.breaker.Allow() {
		return rl.degraded(ctx, key)
	}
	callCtx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	count, err := rl.counter.IncrWindow(callCtx, redisKey, rl.window)
	if err != nil {
		rl.breaker.Failure()
		rl.logger.Error("redis rate limiter error", slog.String("op", "incr"), slog.String("error", err.Error()))
		return rl.degraded(ctx, key)
	}
	rl.breaker.Success()
	if int(count) <= rl.limit {
		return Decision{Allowed: true}
	}

	ttl, err := rl.counter.TTL(callCtx, redisKey)
	if err != nil || ttl <= 0 {
		ttl = rl.window
	}
	return Decision{Allowed: false, RetryAfter: ttl}
}
