package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/medtravel"
)

// DefaultRedisPrefix is prepended to every key written by Redis.
const DefaultRedisPrefix = "medtravel:tr:"

// Redis is a Redis-backed translation cache shared between server instances.
// Keys are prefix + lang + ":" + sha256(text).
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	timeout   time.Duration
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379/0")
	TTL       int    // TTL in seconds (0 = no expiration)
	KeyPrefix string // Prefix for all keys (default: DefaultRedisPrefix)
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &medtravel.CacheError{Message: "invalid redis url", Cause: err}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, &medtravel.CacheError{Message: "redis ping failed", Cause: err}
	}

	return NewRedisFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisFromClient wraps an existing Redis client.
func NewRedisFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisPrefix
	}

	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}

	return &Redis{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		timeout:   2 * time.Second,
	}
}

// Client returns the underlying client so other stores can share the
// connection pool.
func (c *Redis) Client() *redis.Client {
	return c.client
}

// Key returns the Redis key used for text in lang.
func (c *Redis) Key(lang, text string) string {
	return c.keyPrefix + medtravel.CacheKey(lang, medtravel.HashText(text))
}

// Get retrieves a translation. Connection errors are reported as misses.
func (c *Redis) Get(lang, text string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.Key(lang, text)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a translation.
func (c *Redis) Set(lang, text, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.Key(lang, text), value, c.ttl).Err(); err != nil {
		return &medtravel.CacheError{Message: "redis set failed", Cause: err}
	}
	return nil
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ Cache = (*Redis)(nil)
