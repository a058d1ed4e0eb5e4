package cache

import (
	"context"

	"github.com/heoquay/backend/internal/domain/shipper"
)

// ShipperKey is the Redis key holding the cached shipper list
const ShipperKey = "heoquay:shippers"

// ShipperCache holds the shipper list between requests. A miss is reported
// with ok=false and no error. Concurrent misses may both fetch upstream.
type ShipperCache interface {
	Get(ctx context.Context) (list []shipper.Shipper, ok bool, err error)
	Set(ctx context.Context, list []shipper.Shipper) error
	Invalidate(ctx context.Context) error
}
