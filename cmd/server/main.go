package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/application/delivery"
	identityapp "github.com/heoquay/backend/internal/application/identity"
	orderapp "github.com/heoquay/backend/internal/application/order"
	"github.com/heoquay/backend/internal/application/refresh"
	"github.com/heoquay/backend/internal/application/shipper"
	"github.com/heoquay/backend/internal/application/warehouse"
	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/heoquay/backend/internal/infrastructure/ahamove"
	"github.com/heoquay/backend/internal/infrastructure/cache"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/persistence"
	"github.com/heoquay/backend/internal/infrastructure/telemetry"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"github.com/heoquay/backend/internal/interfaces/http/handler"
	"github.com/heoquay/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, closeLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer closeLog()

	log.Info("Starting order desk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	if cfg.Upstream.BaseURL == "" {
		log.Warn("upstream.base_url is not set, every proxied call will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	metrics := telemetry.NewMetrics()

	cal, err := domain.NewCalendar(cfg.App.Timezone)
	if err != nil {
		log.Fatal("Invalid app.timezone", zap.String("timezone", cfg.App.Timezone), zap.Error(err))
	}

	// Outbound clients
	up := upstream.NewClient(cfg.Upstream,
		upstream.WithLogger(log),
		upstream.WithObserver(metrics),
	)
	courier := ahamove.NewClient(cfg.Ahamove,
		ahamove.WithLogger(log),
		ahamove.WithObserver(metrics),
	)
	if !courier.Configured() {
		log.Warn("Ahamove token is not set, deliveries cannot be dispatched")
	}

	// Stores
	shipperCache, closeCache, err := cache.NewFactory(cfg.Cache, cfg.Redis,
		cache.WithLogger(log),
	).CreateShipperCache()
	if err != nil {
		log.Fatal("Failed to create shipper cache", zap.Error(err))
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Error("Error closing shipper cache", zap.Error(err))
		}
	}()

	userRepo, closeUsers, err := persistence.NewUserRepository(cfg.Users, log)
	if err != nil {
		log.Fatal("Failed to open user store", zap.Error(err))
	}
	defer func() {
		if err := closeUsers(); err != nil {
			log.Error("Error closing user store", zap.Error(err))
		}
	}()
	if seeded, err := persistence.SeedAdmin(ctx, userRepo, cfg.Users.SeedAdminName, cfg.Users.SeedAdminPass); err != nil {
		log.Error("Failed to seed admin account", zap.Error(err))
	} else if seeded {
		log.Info("Admin account created", zap.String("username", cfg.Users.SeedAdminName))
	}

	// Application services
	orderService := orderapp.NewService(up, cal)
	deliveryService := delivery.NewService(courier, orderService, orderService, cfg.Ahamove)
	bulkService := orderapp.NewBulkService(up, deliveryService)
	warehouseService := warehouse.NewService(up)
	shipperService := shipper.NewService(up, shipperCache, shipper.WithObserver(metrics))
	authService := identityapp.NewAuthService(up)
	userService := identityapp.NewUserService(userRepo, log)

	board := orderapp.NewBoard(orderService, cal, upstream.Credentials{
		Token: cfg.Upstream.ServiceToken,
		Role:  cfg.Upstream.ServiceRole,
	}, log)
	poller := refresh.NewPoller(refresh.Config{
		Enabled:  cfg.Refresh.Enabled,
		Interval: cfg.Refresh.IntervalSeconds,
	}, board.Refresh,
		refresh.WithLogger(log.Named("poller")),
		refresh.WithObserver(metrics),
	)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(cfg, log, metrics, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Order:     handler.NewOrderHandler(orderService, bulkService),
		Board:     handler.NewBoardHandler(board, poller, cal),
		Delivery:  handler.NewDeliveryHandler(deliveryService),
		Warehouse: handler.NewWarehouseHandler(warehouseService),
		Shipper:   handler.NewShipperHandler(shipperService),
		User:      handler.NewUserHandler(userService),
		System: handler.NewSystemHandler(cfg.App.Name, version, handler.HealthCheck{
			Name: "upstream",
			Check: func(context.Context) error {
				if cfg.Upstream.BaseURL == "" {
					return upstream.ErrNotConfigured
				}
				return nil
			},
		}),
	})
	defer engine.Close()

	// The first snapshot is taken before the countdown starts
	if cfg.Refresh.Enabled {
		if _, err := board.Refresh(ctx); err != nil {
			log.Warn("Initial order board refresh failed", zap.Error(err))
		}
	}
	if err := poller.Start(ctx); err != nil {
		log.Fatal("Failed to start auto-refresh poller", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := poller.Stop(shutdownCtx); err != nil {
		log.Warn("Auto-refresh poller did not stop in time", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
