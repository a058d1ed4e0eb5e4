package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/heoquay/backend/internal/domain/shipper"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisShipperCache shares the shipper list across instances
type RedisShipperCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisShipperCache connects to Redis and verifies the connection
func NewRedisShipperCache(cfg config.RedisConfig, ttl time.Duration) (*RedisShipperCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisShipperCacheWithClient(client, ShipperKey, ttl), nil
}

// NewRedisShipperCacheWithClient creates a cache over an existing client
func NewRedisShipperCacheWithClient(client *redis.Client, key string, ttl time.Duration) *RedisShipperCache {
	if key == "" {
		key = ShipperKey
	}
	return &RedisShipperCache{client: client, key: key, ttl: ttl}
}

// Get implements ShipperCache
func (c *RedisShipperCache) Get(ctx context.Context) ([]shipper.Shipper, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read shipper cache: %w", err)
	}

	var list []shipper.Shipper
	if err := json.Unmarshal(raw, &list); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it
		return nil, false, nil
	}
	return list, true, nil
}

// Set implements ShipperCache
func (c *RedisShipperCache) Set(ctx context.Context, list []shipper.Shipper) error {
	if list == nil {
		list = []shipper.Shipper{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode shipper list: %w", err)
	}
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write shipper cache: %w", err)
	}
	return nil
}

// Invalidate implements ShipperCache
func (c *RedisShipperCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate shipper cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisShipperCache) Close() error {
	return c.client.Close()
}
