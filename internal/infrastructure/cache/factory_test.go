package cache

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/heoquay/backend/internal/domain/shipper"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unreachableRedis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

func TestFactory_Memory(t *testing.T) {
	f := NewFactory(config.CacheConfig{Driver: "memory", ShipperTTL: time.Minute}, config.RedisConfig{})
	c, closeFn, err := f.CreateShipperCache()
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &InMemoryShipperCache{}, c)
}

func TestFactory_RedisFallback(t *testing.T) {
	f := NewFactory(config.CacheConfig{Driver: "redis", ShipperTTL: time.Minute}, unreachableRedis)
	c, closeFn, err := f.CreateShipperCache()
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &InMemoryShipperCache{}, c)
}

func TestFactory_RedisRequired(t *testing.T) {
	f := NewFactory(config.CacheConfig{Driver: "redis"}, unreachableRedis, WithInMemoryFallback(false))
	_, _, err := f.CreateShipperCache()
	assert.Error(t, err)
}

// redisFromEnv returns a reachable Redis config from HQ_TEST_REDIS_ADDR or skips
func redisFromEnv(t *testing.T) config.RedisConfig {
	t.Helper()
	addr := os.Getenv("HQ_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HQ_TEST_REDIS_ADDR not set")
	}
	host, portStr, found := strings.Cut(addr, ":")
	require.True(t, found, "HQ_TEST_REDIS_ADDR must be host:port")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return config.RedisConfig{Host: host, Port: port}
}

func TestRedisShipperCache(t *testing.T) {
	cfg := redisFromEnv(t)
	ctx := context.Background()

	c, err := NewRedisShipperCache(cfg, time.Minute)
	require.NoError(t, err)
	defer c.Close()
	c.key = "heoquay:test:shippers:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	defer c.Invalidate(ctx)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	list := []shipper.Shipper{{UserName: "tuan", Phone: "0901"}}
	require.NoError(t, c.Set(ctx, list))
	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, list, got)

	ttl, err := c.client.TTL(ctx, c.key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx))
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)
}
