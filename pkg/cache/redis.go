package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisCache.
type RedisConfig struct {
	// Addr is a comma-separated list of host:port addresses. More than one
	// address selects a cluster client.
	Addr     string
	Username string
	Password string
	DB       int

	// KeyPrefix is prepended to every key, e.g. "quicksilver:".
	KeyPrefix string
}

// RedisCache stores entries in Redis. Connection failures and timeouts are
// returned wrapped with Retryable so callers can use Backoff.Retry.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache creates a Redis-backed cache. It does not contact the
// server; use Ping to check connectivity.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("%w: redis address must be specified", ErrInvalidConfig)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    strings.Split(cfg.Addr, ","),
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedisCache(client, cfg.KeyPrefix), nil
}

func newRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Ping checks that the server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return wrapRedisErr(c.client.Ping(ctx).Err())
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapRedisErr(err)
	}
	return data, true, nil
}

// Set stores a value in the cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return wrapRedisErr(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
}

// Delete removes a value from the cache. Missing keys are ignored.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return wrapRedisErr(c.client.Del(ctx, c.prefix+key).Err())
}

// Close closes the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// wrapRedisErr marks network failures as retryable. Server-side errors
// (wrong type, auth) are returned unchanged.
func wrapRedisErr(err error) error {
	if err == nil {
		return nil
	}
	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Retryable(fmt.Errorf("%w: %w", ErrUnavailable, err))
}

var (
	_ Cache  = (*RedisCache)(nil)
	_ Pinger = (*RedisCache)(nil)
)
