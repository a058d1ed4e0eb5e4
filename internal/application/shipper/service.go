package shipper

import (
	"context"
	"net/url"
	"strings"

	domain "github.com/heoquay/backend/internal/domain/shipper"
	"github.com/heoquay/backend/internal/infrastructure/cache"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var (
	keyUserName = []string{"userName", "username", "tenDangNhap", "name", "ten"}
	keyPhone    = []string{"soDienThoai", "sdt", "phone"}
	keyRole     = []string{"vaiTro", "role"}
)

// Getter reads from a webhook endpoint
type Getter interface {
	Get(ctx context.Context, endpoint string, query url.Values) (*upstream.Result, error)
}

// CacheObserver records cache hits and misses
type CacheObserver interface {
	ObserveCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveCache(bool) {}

// Service serves the shipper list from the cache, filling it from upstream
// on a miss. Two concurrent misses may both fetch.
type Service struct {
	upstream Getter
	cache    cache.ShipperCache
	observer CacheObserver
}

// Option configures a Service
type Option func(*Service)

// WithObserver sets the cache metrics observer
func WithObserver(o CacheObserver) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// NewService creates a shipper service
func NewService(up Getter, c cache.ShipperCache, opts ...Option) *Service {
	s := &Service{upstream: up, cache: c, observer: nopObserver{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the shipper list. refresh drops the cached copy first.
// A cache failure is logged and the list is fetched upstream instead.
func (s *Service) List(ctx context.Context, refresh bool) ([]domain.Shipper, error) {
	log := logger.L(ctx)

	if refresh {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn("Shipper cache invalidate failed", zap.Error(err))
		}
	} else {
		list, ok, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn("Shipper cache read failed", zap.Error(err))
		}
		if ok {
			s.observer.ObserveCache(true)
			return list, nil
		}
	}
	s.observer.ObserveCache(false)

	list, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, list); err != nil {
		log.Warn("Shipper cache write failed", zap.Error(err))
	}
	return list, nil
}

// Invalidate drops the cached list
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func (s *Service) fetch(ctx context.Context) ([]domain.Shipper, error) {
	res, err := s.upstream.Get(ctx, config.EndpointShippers, nil)
	if err != nil {
		return nil, err
	}
	if err := upstream.Reject(res); err != nil {
		return nil, err
	}
	raw, err := upstream.ExtractList(res, "shippers", "users", "items", "data")
	if err != nil {
		return nil, err
	}

	list := make([]domain.Shipper, 0, len(raw))
	for _, r := range raw {
		switch v := r.(type) {
		case string:
			list = append(list, domain.Shipper{UserName: v})
		case map[string]any:
			list = append(list, domain.Shipper{
				UserName: str(v, keyUserName),
				Phone:    str(v, keyPhone),
				Role:     str(v, keyRole),
			})
		}
	}
	return domain.Dedupe(list), nil
}

func str(raw map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return strings.TrimSpace(cast.ToString(v))
		}
	}
	return ""
}
