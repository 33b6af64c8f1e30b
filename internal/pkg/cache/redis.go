package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/config"
	"github.com/covidtimeseries/metadata/internal/pkg/logger"
)

// RedisDB wraps a Redis client
type RedisDB struct {
	Client *redis.Client
}

// NewRedis connects to the Redis server described by cfg
func NewRedis(ctx context.Context, cfg config.CacheConfig) (*RedisDB, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      2,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 256 * time.Millisecond,
		DialTimeout:     3 * time.Second,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		PoolSize:        20,
		MinIdleConns:    2,
		PoolTimeout:     2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("connected to Redis",
		zap.String("addr", addr),
		zap.Int("db", cfg.DB),
	)

	return NewRedisWithClient(client), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client) *RedisDB {
	return &RedisDB{Client: client}
}

// Close closes the Redis connection
func (db *RedisDB) Close() error {
	if db.Client != nil {
		return db.Client.Close()
	}
	return nil
}

// Ping checks the connection
func (db *RedisDB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx).Err()
}

// Cache stores JSON-encoded registry responses under a key prefix with a
// fixed TTL.
type Cache struct {
	redis  *RedisDB
	ttl    time.Duration
	prefix string
}

// NewCache creates a new cache
func NewCache(redis *RedisDB, ttl time.Duration, prefix string) *Cache {
	return &Cache{
		redis:  redis,
		ttl:    ttl,
		prefix: prefix,
	}
}

// Key joins the cache prefix, a kind and an identifier
func (c *Cache) Key(kind, id string) string {
	return c.prefix + kind + ":" + id
}

// GetJSON decodes the value at key into dest. A miss returns false and a
// nil error.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.redis.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores value at key for the cache TTL
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.redis.Client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Ping checks the cache backend
func (c *Cache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx)
}
