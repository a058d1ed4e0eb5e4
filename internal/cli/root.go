// Package cli implements hqctl, the terminal companion of the order desk
// backend. It talks to the webhook API with the same clients the server uses.
package cli

import (
	"errors"
	"fmt"
	"os"

	orderapp "github.com/heoquay/backend/internal/application/order"
	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configFile  string
	upstreamURL string
	token       string
	role        string
	logLevel    string
}

// env bundles what a command needs to reach the webhook API
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	cal    *domain.Calendar
	orders *orderapp.Service
	creds  upstream.Credentials
	close  func()
}

// NewRootCommand builds the hqctl command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "hqctl",
		Short: "Order desk tools for Heo Quay Ngọc Hải",
		Long: `hqctl reads the order webhook API from the terminal.

It prints the kitchen pick list of a day and can watch the order board,
printing a per-day summary after every refresh.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: config.toml in . or /app)")
	flags.StringVar(&opts.upstreamURL, "upstream-url", "", "webhook API base URL, overrides upstream.base_url")
	flags.StringVar(&opts.token, "token", "", "bearer token sent upstream (default: upstream.service_token)")
	flags.StringVar(&opts.role, "role", "", "role sent upstream (default: upstream.service_role)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(newPickListCommand(opts), newWatchCommand(opts))
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *rootOptions) setup() (*env, error) {
	cfg, err := config.LoadFile(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.upstreamURL != "" {
		cfg.Upstream.BaseURL = o.upstreamURL
	}
	if cfg.Upstream.BaseURL == "" {
		return nil, errors.New("no webhook API configured: set upstream.base_url or --upstream-url")
	}

	log, closeLog, err := logger.New(&logger.Config{Level: o.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	cal, err := domain.NewCalendar(cfg.App.Timezone)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("invalid app.timezone %q: %w", cfg.App.Timezone, err)
	}

	creds := upstream.Credentials{Token: cfg.Upstream.ServiceToken, Role: cfg.Upstream.ServiceRole}
	if o.token != "" {
		creds.Token = o.token
	}
	if o.role != "" {
		creds.Role = o.role
	}

	up := upstream.NewClient(cfg.Upstream, upstream.WithLogger(log))
	return &env{
		cfg:    cfg,
		log:    log,
		cal:    cal,
		orders: orderapp.NewService(up, cal),
		creds:  creds,
		close:  closeLog,
	}, nil
}
