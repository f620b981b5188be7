package gate

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pacekit/pacer/guard"
)

// RedisGate is a Gate shared by every process pointed at the same Redis.
// The window is a single volatile key per throttled key: SET NX PX claims
// the window, PTTL reports the remaining wait once claimed.
type RedisGate struct {
	client   *redis.Client
	interval time.Duration
	prefix   string
}

var _ Gate = (*RedisGate)(nil)

// NewRedisGate constructs a RedisGate over an existing client. The
// interval must be strictly positive.
func NewRedisGate(rdb *redis.Client, interval time.Duration, opts ...func(*RedisGate)) (*RedisGate, error) {
	if err := guard.Positive("interval", interval); err != nil {
		return nil, err
	}

	g := &RedisGate{
		client:   rdb,
		interval: interval,
		prefix:   "pacer:gate",
	}

	// Apply all provided options
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// WithPrefix sets the Redis key prefix, a good value
// would be the name of your application.
// default: "pacer:gate"
func WithPrefix(prefix string) func(*RedisGate) {
	return func(g *RedisGate) {
		g.prefix = prefix
	}
}

// Allow attempts to claim the window for key. SET NX is atomic, so across
// processes exactly one caller wins each window.
func (g *RedisGate) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if err := guard.NotEmpty("key", key); err != nil {
		return false, 0, err
	}

	claimed, err := g.client.SetNX(ctx, g.redisKey(key), 1, g.interval).Result()
	if err != nil {
		return false, 0, err
	}
	if claimed {
		return true, 0, nil
	}

	ttl, err := g.client.PTTL(ctx, g.redisKey(key)).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl < 0 {
		// The holder expired between SETNX and PTTL; the next call wins.
		ttl = 0
	}
	return false, ttl, nil
}

// Reset releases the window for key.
func (g *RedisGate) Reset(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.redisKey(key)).Err()
}

func (g *RedisGate) redisKey(key string) string {
	return g.prefix + ":" + key
}
