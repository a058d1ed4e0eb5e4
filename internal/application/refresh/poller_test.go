package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// manualTicker is driven by the test. The channel is unbuffered, so a send
// returns only once the loop has finished handling the previous tick.
type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

func (t *manualTicker) tick(n int) {
	for i := 0; i < n; i++ {
		t.ch <- time.Now()
	}
}

type countingFetch struct {
	calls atomic.Int32
	err   error
}

func (f *countingFetch) fetch(ctx context.Context) (int, error) {
	f.calls.Add(1)
	return 3, f.err
}

type recordingObserver struct {
	mu       sync.Mutex
	triggers []string
	errs     []error
}

func (o *recordingObserver) ObserveRefresh(trigger string, err error, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.triggers = append(o.triggers, trigger)
	o.errs = append(o.errs, err)
}

func startPoller(t *testing.T, cfg Config, fetch FetchFunc, opts ...Option) (*Poller, *manualTicker) {
	t.Helper()
	ticker := newManualTicker()
	opts = append(opts, WithTicker(func(time.Duration) Ticker { return ticker }))
	p := NewPoller(cfg, fetch, opts...)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(func() { _ = p.Stop(context.Background()) })
	return p, ticker
}

func ticks(p *Poller, n int) {
	for i := 0; i < n; i++ {
		p.onTick(context.Background())
	}
}

func TestPoller_RefreshesOncePerInterval(t *testing.T) {
	f := &countingFetch{}
	obs := &recordingObserver{}
	p := NewPoller(Config{Enabled: true, Interval: 5}, f.fetch, WithObserver(obs))

	ticks(p, 4)
	assert.Zero(t, f.calls.Load())
	assert.Equal(t, 1, p.State().Countdown)

	ticks(p, 1)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, 5, p.State().Countdown)

	ticks(p, 5)
	assert.Equal(t, int32(2), f.calls.Load())
	assert.Equal(t, []string{TriggerTick, TriggerTick}, obs.triggers)
}

func TestPoller_HiddenFreezesCountdown(t *testing.T) {
	f := &countingFetch{}
	p := NewPoller(Config{Enabled: true, Interval: 3}, f.fetch)

	ticks(p, 2)
	assert.Equal(t, 1, p.State().Countdown)

	p.SetVisible(false)
	ticks(p, 10)
	assert.Equal(t, 1, p.State().Countdown)
	assert.Zero(t, f.calls.Load())

	// becoming visible resumes without an immediate refresh
	p.SetVisible(true)
	assert.Zero(t, f.calls.Load())
	ticks(p, 1)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestPoller_ManualRefreshResetsCountdown(t *testing.T) {
	f := &countingFetch{}
	obs := &recordingObserver{}
	p := NewPoller(Config{Enabled: true, Interval: 5}, f.fetch, WithObserver(obs))

	ticks(p, 4)
	assert.Equal(t, 1, p.State().Countdown)

	ran, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 5, p.State().Countdown)
	assert.False(t, p.State().LastRefresh.IsZero())

	ticks(p, 4)
	assert.Equal(t, int32(1), f.calls.Load(), "countdown restarted from the full interval")
	ticks(p, 1)
	assert.Equal(t, int32(2), f.calls.Load())
	assert.Equal(t, []string{TriggerManual, TriggerTick}, obs.triggers)
}

func TestPoller_LoopDrivesTicks(t *testing.T) {
	f := &countingFetch{}
	_, ticker := startPoller(t, Config{Enabled: true, Interval: 3}, f.fetch)

	ticker.tick(3)
	// the next send returns only after the third tick and its refresh are done
	ticker.tick(1)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestPoller_Disabled(t *testing.T) {
	f := &countingFetch{}
	created := false
	p := NewPoller(Config{Enabled: false, Interval: 1}, f.fetch,
		WithTicker(func(time.Duration) Ticker {
			created = true
			return newManualTicker()
		}))

	require.NoError(t, p.Start(context.Background()))
	assert.False(t, created, "no loop for a disabled poller")
	assert.False(t, p.State().Running)

	ran, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, f.calls.Load())
	require.NoError(t, p.Stop(context.Background()))
}

func TestPoller_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		return 1, nil
	}
	p := NewPoller(Config{Enabled: true, Interval: 2}, fetch,
		WithTicker(func(time.Duration) Ticker { return newManualTicker() }))
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop(context.Background())

	done := make(chan bool)
	go func() {
		ran, _ := p.Refresh(context.Background())
		done <- ran
	}()
	<-entered
	assert.True(t, p.State().Refreshing)

	ran, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, ran, "second refresh suppressed while one is in flight")

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPoller_FailuresAreSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := &countingFetch{err: errors.New("upstream down")}
	p := NewPoller(Config{Enabled: true, Interval: 2}, f.fetch, WithLogger(zap.New(core)))

	ticks(p, 4)
	assert.Equal(t, int32(2), f.calls.Load(), "scheduling continues after a failure")
	assert.Equal(t, "upstream down", p.State().LastError)
	assert.Equal(t, 2, logs.FilterMessage("Auto-refresh failed").Len())
	assert.True(t, p.State().LastRefresh.IsZero())
}

func TestPoller_StopCancelsInFlight(t *testing.T) {
	entered := make(chan struct{})
	cancelled := make(chan struct{})
	fetch := func(ctx context.Context) (int, error) {
		close(entered)
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	}
	ticker := newManualTicker()
	p := NewPoller(Config{Enabled: true, Interval: 1}, fetch,
		WithTicker(func(time.Duration) Ticker { return ticker }))
	require.NoError(t, p.Start(context.Background()))

	ticker.tick(1)
	<-entered

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Stop(stopCtx))

	<-cancelled
	assert.True(t, ticker.stopped.Load())
	assert.False(t, p.State().Running)

	ran, err := p.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
	assert.False(t, ran)
	assert.ErrorIs(t, p.Start(context.Background()), ErrStopped)
}

func TestPoller_StopCancelsManualRefresh(t *testing.T) {
	entered := make(chan struct{})
	fetch := func(ctx context.Context) (int, error) {
		close(entered)
		<-ctx.Done()
		return 0, ctx.Err()
	}
	p := NewPoller(Config{Enabled: true, Interval: 10}, fetch,
		WithTicker(func(time.Duration) Ticker { return newManualTicker() }))
	require.NoError(t, p.Start(context.Background()))

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Refresh(context.Background())
		errCh <- err
	}()
	<-entered
	require.NoError(t, p.Stop(context.Background()))
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	p := NewPoller(Config{Enabled: true}, func(context.Context) (int, error) { return 0, nil })
	assert.Equal(t, 300, p.State().Interval)
	assert.Equal(t, 300, p.State().Countdown)
	assert.True(t, p.State().Visible)
}
