// Package cache provides the read-through cache used by the terminology
// mapper, backed by Redis.  A miss is not an error; a dead Redis degrades to
// all-miss behavior so lookups fall through to the terminology service.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/turtacn/RxMed-Intelligence/internal/config"
	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
)

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl; ttl <= 0 uses the configured
	// default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisCache struct {
	client     *redis.Client
	keyPrefix  string
	defaultTTL time.Duration
	logger     logging.Logger
}

var _ Cache = (*redisCache)(nil)

// NewRedisCache builds a Cache from the Redis configuration.  The connection
// is lazy; a Redis that is down at startup only surfaces on first use.
func NewRedisCache(cfg config.RedisConfig, logger logging.Logger) Cache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return &redisCache{
		client:     client,
		keyPrefix:  cfg.KeyPrefix,
		defaultTTL: cfg.DefaultTTL,
		logger:     logger.Named("cache.redis"),
	}
}

// NewRedisCacheFromClient wraps an existing client, used by tests against
// miniature or mocked servers.
func NewRedisCacheFromClient(client *redis.Client, keyPrefix string, defaultTTL time.Duration, logger logging.Logger) Cache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &redisCache{
		client:     client,
		keyPrefix:  keyPrefix,
		defaultTTL: defaultTTL,
		logger:     logger.Named("cache.redis"),
	}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "cache get failed")
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set failed")
	}
	return nil
}

// Name identifies the cache in readiness probes.
func (c *redisCache) Name() string { return "redis" }

// Check pings Redis.  Implements the health-checker contract of the HTTP
// readiness probe.
func (c *redisCache) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// NopCache discards writes and always misses.  Used when Redis is disabled.
type NopCache struct{}

var _ Cache = NopCache{}

func (NopCache) Get(_ context.Context, _ string) ([]byte, bool, error) { return nil, false, nil }
func (NopCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
