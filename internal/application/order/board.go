package order

import (
	"context"
	"net/url"
	"sync"
	"time"

	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

// Lister fetches the current order list
type Lister interface {
	List(ctx context.Context, query url.Values) ([]domain.Order, error)
}

// Snapshot is the last successfully fetched order list, grouped by day
type Snapshot struct {
	Orders      []domain.Order
	Buckets     []domain.DayBucket
	RefreshedAt time.Time
}

// Board keeps the server-side order snapshot that the auto-refresh poller
// re-fetches. Readers always see a complete snapshot.
type Board struct {
	orders   Lister
	calendar *domain.Calendar
	creds    upstream.Credentials
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewBoard creates a board that fetches with the given service credentials
func NewBoard(orders Lister, cal *domain.Calendar, creds upstream.Credentials, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	return &Board{
		orders:   orders,
		calendar: cal,
		creds:    creds,
		now:      time.Now,
		logger:   log.Named("board"),
	}
}

// Refresh re-fetches the order list and replaces the snapshot. A failed fetch
// leaves the previous snapshot in place.
func (b *Board) Refresh(ctx context.Context) (int, error) {
	ctx = upstream.WithCredentials(ctx, b.creds)
	ctx = logger.WithContext(ctx, b.logger)

	orders, err := b.orders.List(ctx, nil)
	if err != nil {
		return 0, err
	}
	snap := Snapshot{
		Orders:      orders,
		Buckets:     b.calendar.GroupByDay(orders),
		RefreshedAt: b.now(),
	}

	b.mu.Lock()
	b.snapshot = snap
	b.mu.Unlock()

	logger.L(ctx).Info("Order board refreshed", zap.Int("orders", len(orders)))
	return len(orders), nil
}

// Snapshot returns the current snapshot
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot
}

// View filters the snapshot and returns the calendar view
func (b *Board) View(f domain.Filter) (CalendarView, time.Time) {
	snap := b.Snapshot()
	return buildCalendar(b.calendar, snap.Orders, f), snap.RefreshedAt
}
