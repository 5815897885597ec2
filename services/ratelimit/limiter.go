// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/cpgs-hub/backend/core"
)

const keyPrefix = "rate_limit:"

// incrWindow counts one request and makes sure the counter expires.
// A counter found without a TTL gets one, so a key never blocks forever.
var incrWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// Limiter allows at most a fixed number of calls per key and window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter shares its counters across every API instance.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	count, err := incrWindow.Run(ctx, l.client, []string{keyPrefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, errors.Wrap(err, "counting request")
	}
	return count <= int64(l.limit), nil
}

// MemoryLimiter keeps counters in process memory.
type MemoryLimiter struct {
	mutex   sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]*counter
}

type counter struct {
	count   int
	resetAt time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, window: window, windows: make(map[string]*counter)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	now := core.NowFunc()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	c, ok := l.windows[key]
	if !ok || !now.Before(c.resetAt) {
		l.sweep(now)
		c = &counter{resetAt: now.Add(l.window)}
		l.windows[key] = c
	}
	c.count++
	return c.count <= l.limit, nil
}

// sweep drops expired windows. Callers hold the mutex.
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, c := range l.windows {
		if !now.Before(c.resetAt) {
			delete(l.windows, key)
		}
	}
}

// New returns a RedisLimiter when client is set, a MemoryLimiter otherwise.
func New(client *redis.Client, limit int, window time.Duration) Limiter {
	if client != nil {
		return NewRedisLimiter(client, limit, window)
	}
	return NewMemoryLimiter(limit, window)
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}
