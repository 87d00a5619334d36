package common

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter keeps one token bucket per key in an expiring in-process cache.
type MemoryLimiter struct {
	mu    sync.Mutex
	c     *Cache[*rate.Limiter]
	rps   rate.Limit
	burst int
}

func NewMemoryLimiter(rps float64, burst int, idle time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:     NewCache[*rate.Limiter](idle, 2*idle),
		rps:   rate.Limit(rps),
		burst: burst,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.c.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
	}

	// re-set on every hit so that the idle expiry restarts
	l.c.Set(key, lim)

	return lim.Allow(), nil
}

// RedisLimiter is a fixed window counter (INCR + EXPIRE) shared by every replica.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

// MinRedisWindow is the shortest Redis window. Window keys are bucketed by
// unix second, so windows are whole seconds.
const MinRedisWindow = time.Second

func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	window = max(window.Truncate(time.Second), MinRedisWindow)

	return &RedisLimiter{
		client: client,
		prefix: prefix,
		max:    int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow fails open: when Redis cannot be reached the request is allowed and the error returned.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	start := l.now().UTC().Truncate(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("rate limit: %w", err)
	}

	return incr.Val() <= l.max, nil
}
