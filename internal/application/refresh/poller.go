// Package refresh runs the visibility-aware auto-refresh countdown of the
// order board.
package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Refresh triggers reported to the Observer
const (
	TriggerTick   = "tick"
	TriggerManual = "manual"
)

// ErrStopped is returned by Refresh after Stop
var ErrStopped = errors.New("refresh: poller stopped")

// FetchFunc re-fetches the data and returns how many records it got
type FetchFunc func(ctx context.Context) (int, error)

// Observer receives one observation per refresh attempt
type Observer interface {
	ObserveRefresh(trigger string, err error, records int)
}

type nopObserver struct{}

func (nopObserver) ObserveRefresh(string, error, int) {}

// Ticker delivers the one-second countdown ticks
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// Config configures a Poller
type Config struct {
	Enabled  bool
	Interval int // seconds between refreshes
}

// State is a point-in-time view of the poller
type State struct {
	Enabled     bool      `json:"enabled"`
	Running     bool      `json:"running"`
	Visible     bool      `json:"visible"`
	Refreshing  bool      `json:"refreshing"`
	Countdown   int       `json:"countdown"`
	Interval    int       `json:"interval"`
	LastRefresh time.Time `json:"lastRefresh,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
}

// Poller counts down once per second while visible and re-fetches when the
// countdown reaches zero. Hidden freezes the countdown. Only one refresh runs
// at a time, whether started by a tick or by Refresh.
type Poller struct {
	cfg       Config
	fetch     FetchFunc
	logger    *zap.Logger
	observer  Observer
	newTicker func(time.Duration) Ticker
	now       func() time.Time

	inFlight atomic.Bool

	mu          sync.Mutex
	running     bool
	stopped     bool
	visible     bool
	countdown   int
	lastRefresh time.Time
	lastErr     error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Poller
type Option func(*Poller)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		p.logger = l
	}
}

// WithObserver sets the refresh observer used for metrics
func WithObserver(o Observer) Option {
	return func(p *Poller) {
		p.observer = o
	}
}

// WithTicker replaces the time.Ticker factory
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(p *Poller) {
		p.newTicker = fn
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		p.now = now
	}
}

// NewPoller creates a poller. It starts visible with a full countdown.
func NewPoller(cfg Config, fetch FetchFunc, opts ...Option) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 300
	}
	p := &Poller{
		cfg:       cfg,
		fetch:     fetch,
		logger:    zap.NewNop(),
		observer:  nopObserver{},
		newTicker: func(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} },
		now:       time.Now,
		visible:   true,
		countdown: cfg.Interval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins ticking. A disabled poller never starts a loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}
	if p.running || !p.cfg.Enabled {
		return nil
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(ctx)
	ticker := p.newTicker(time.Second)

	p.wg.Add(1)
	go p.run(p.ctx, ticker)

	p.logger.Info("Auto-refresh poller started", zap.Int("interval_seconds", p.cfg.Interval))
	return nil
}

// Stop stops the ticker and cancels an in-flight refresh. Nothing fires after
// Stop returns.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	wasRunning := p.running
	p.running = false
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	if !wasRunning {
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Auto-refresh poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) run(ctx context.Context, ticker Ticker) {
	defer p.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			p.onTick(ctx)
		}
	}
}

func (p *Poller) onTick(ctx context.Context) {
	if p.tick() {
		_, _ = p.refresh(ctx, TriggerTick)
	}
}

// tick advances the countdown and reports whether it expired
func (p *Poller) tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.visible || p.stopped {
		return false
	}
	if p.inFlight.Load() {
		return false
	}
	if p.countdown > 0 {
		p.countdown--
	}
	return p.countdown == 0
}

// Refresh re-fetches now and resets the countdown. It reports false without
// fetching when the poller is disabled or another refresh is running.
func (p *Poller) Refresh(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return false, ErrStopped
	}
	if !p.cfg.Enabled {
		p.mu.Unlock()
		return false, nil
	}
	stopCtx := p.ctx
	p.mu.Unlock()

	// Stop must also cancel a manual refresh
	if stopCtx != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		release := context.AfterFunc(stopCtx, cancel)
		defer release()
	}
	return p.refresh(ctx, TriggerManual)
}

func (p *Poller) refresh(ctx context.Context, trigger string) (bool, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("Refresh already in progress", zap.String("trigger", trigger))
		return false, nil
	}
	defer p.inFlight.Store(false)

	n, err := p.fetch(ctx)
	p.observer.ObserveRefresh(trigger, err, n)

	p.mu.Lock()
	p.countdown = p.cfg.Interval
	if err == nil {
		p.lastRefresh = p.now()
	}
	p.lastErr = err
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("Auto-refresh failed", zap.String("trigger", trigger), zap.Error(err))
		return true, err
	}
	p.logger.Debug("Auto-refresh done", zap.String("trigger", trigger), zap.Int("records", n))
	return true, nil
}

// SetVisible freezes (false) or resumes (true) the countdown. Becoming
// visible does not refresh immediately.
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = visible
}

// State returns the current poller state
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := State{
		Enabled:     p.cfg.Enabled,
		Running:     p.running,
		Visible:     p.visible,
		Refreshing:  p.inFlight.Load(),
		Countdown:   p.countdown,
		Interval:    p.cfg.Interval,
		LastRefresh: p.lastRefresh,
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}
