package cache

import (
	"fmt"

	"github.com/heoquay/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory creates the shipper cache selected by configuration
type Factory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateShipperCache returns the configured cache and a close function
func (f *Factory) CreateShipperCache() (ShipperCache, func() error, error) {
	noop := func() error { return nil }

	if f.cacheConfig.Driver != "redis" {
		f.logger.Info("using in-memory shipper cache", zap.Duration("ttl", f.cacheConfig.ShipperTTL))
		return NewInMemoryShipperCache(f.cacheConfig.ShipperTTL), noop, nil
	}

	redisCache, err := NewRedisShipperCache(f.redisConfig, f.cacheConfig.ShipperTTL)
	if err == nil {
		f.logger.Info("using Redis shipper cache", zap.String("addr", f.redisConfig.Addr()))
		return redisCache, redisCache.Close, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("Redis required for shipper cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory shipper cache", zap.Error(err))
	return NewInMemoryShipperCache(f.cacheConfig.ShipperTTL), noop, nil
}
