package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Limiter decides whether one more request for key fits the window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects clients over the limit with 429. Limiter failures let
// the request through so a Redis outage does not lock users out.
func RateLimit(limiter Limiter, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithError(err).Warn("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// MemoryLimiter is a per-process sliding window limiter.
type MemoryLimiter struct {
	requests map[string][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	// Очистка старых записей каждые 5 минут
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.done:
				return
			}
		}
	}()

	return rl
}

func (rl *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	valid := recent(rl.requests[key], now.Add(-rl.window))
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, nil
	}
	rl.requests[key] = append(valid, now)
	return true, nil
}

func (rl *MemoryLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *MemoryLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, requests := range rl.requests {
		if valid := recent(requests, cutoff); len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func recent(times []time.Time, cutoff time.Time) []time.Time {
	var out []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// RedisLimiter is a fixed window counter shared by every instance that
// talks to the same Redis.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "sharebite:ratelimit:",
	}
}

// Allow counts the hit and arms the window expiry in one round trip. EXPIRE NX
// is sent on every hit so a key whose first EXPIRE was lost still gets a TTL
// on the next request. Requires Redis 7.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := rl.prefix + key

	var incr *redis.IntCmd
	_, err := rl.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, rl.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("updating rate limit counter: %w", err)
	}
	return incr.Val() <= int64(rl.limit), nil
}
