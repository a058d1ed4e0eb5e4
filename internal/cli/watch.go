package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	orderapp "github.com/heoquay/backend/internal/application/order"
	"github.com/heoquay/backend/internal/application/refresh"
	"github.com/spf13/cobra"
)

func newWatchCommand(root *rootOptions) *cobra.Command {
	var (
		interval int
		once     bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the order board on a countdown and print day summaries",
		Long: `watch runs the same auto-refresh poller as the server. After every
refresh it prints the order count and revenue of each delivery day.
Stop it with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := root.setup()
			if err != nil {
				return err
			}
			defer e.close()

			board := orderapp.NewBoard(e.orders, e.cal, e.creds, e.log)
			printer := &summaryPrinter{w: cmd.OutOrStdout(), board: board, now: time.Now}

			if once {
				n, err := board.Refresh(cmd.Context())
				printer.ObserveRefresh(refresh.TriggerManual, err, n)
				return err
			}

			if interval <= 0 {
				interval = e.cfg.Refresh.IntervalSeconds
			}
			poller := refresh.NewPoller(refresh.Config{Enabled: true, Interval: interval}, board.Refresh,
				refresh.WithLogger(e.log.Named("poller")),
				refresh.WithObserver(printer),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// A failed first refresh is printed and the countdown still starts
			_, _ = poller.Refresh(ctx)
			if err := poller.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return poller.Stop(stopCtx)
		},
	}
	cmd.Flags().IntVar(&interval, "interval", 0, "seconds between refreshes (default: refresh.interval_seconds)")
	cmd.Flags().BoolVar(&once, "once", false, "refresh once, print the summary and exit")
	return cmd
}

// summaryPrinter prints the board after each refresh attempt
type summaryPrinter struct {
	mu    sync.Mutex
	w     io.Writer
	board *orderapp.Board
	now   func() time.Time
}

// ObserveRefresh implements refresh.Observer
func (p *summaryPrinter) ObserveRefresh(trigger string, err error, orders int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stamp := p.now().Format("15:04:05")
	if err != nil {
		fmt.Fprintf(p.w, "[%s] làm mới thất bại (%s): %v\n", stamp, trigger, err)
		return
	}

	snap := p.board.Snapshot()
	fmt.Fprintf(p.w, "[%s] %d đơn (%s)\n", stamp, orders, trigger)
	for _, b := range snap.Buckets {
		fmt.Fprintf(p.w, "  %s %-10s %-12s %3d đơn  %s đ\n",
			b.Key, b.Weekday, b.LunarLabel, b.Count(), b.Revenue.StringFixed(0))
	}
}
