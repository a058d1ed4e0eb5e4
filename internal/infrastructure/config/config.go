package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Upstream  UpstreamConfig
	Ahamove   AhamoveConfig
	Refresh   RefreshConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Users     UsersConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Timezone string // IANA zone every order date is interpreted in
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestTimeout    time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	LoginRateLimit    int // login attempts per client per RateLimitWindow
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// UpstreamConfig describes the order webhook API the proxy forwards to
type UpstreamConfig struct {
	BaseURL          string
	Timeout          time.Duration
	RoleHeader       string            // header name the caller's role is forwarded in
	ServiceToken     string            // bearer token used by the server-side order board
	ServiceRole      string            // role sent with ServiceToken
	MaxResponseBytes int64             // upper bound on a relayed response body
	Endpoints        map[string]string // operation name -> path relative to BaseURL
}

// Endpoint names understood by the upstream client
const (
	EndpointLogin          = "login"
	EndpointOrders         = "orders"
	EndpointOrderUpdate    = "order_update"
	EndpointOrderStatus    = "order_status"
	EndpointOrderBulk      = "order_bulk"
	EndpointCheckPaid      = "check_paid"
	EndpointQRPayment      = "qr_payment"
	EndpointSendZalo       = "send_zalo"
	EndpointShipperConfirm = "shipper_confirm"
	EndpointWarehouse      = "warehouse"
	EndpointWarehouseNew   = "warehouse_create"
	EndpointWarehouseEdit  = "warehouse_update"
	EndpointWarehouseDel   = "warehouse_delete"
	EndpointShippers       = "shippers"
)

// DefaultEndpoints are the webhook paths used when none are configured
func DefaultEndpoints() map[string]string {
	return map[string]string{
		EndpointLogin:          "/login",
		EndpointOrders:         "/orders",
		EndpointOrderUpdate:    "/orders/update",
		EndpointOrderStatus:    "/orders/update-status",
		EndpointOrderBulk:      "/orders/update-types",
		EndpointCheckPaid:      "/orders/check-paid",
		EndpointQRPayment:      "/orders/qr-payment",
		EndpointSendZalo:       "/orders/send-zalo",
		EndpointShipperConfirm: "/orders/shipper-confirm",
		EndpointWarehouse:      "/warehouse",
		EndpointWarehouseNew:   "/warehouse/create",
		EndpointWarehouseEdit:  "/warehouse/update",
		EndpointWarehouseDel:   "/warehouse/delete",
		EndpointShippers:       "/shippers",
	}
}

// Endpoint returns the configured path for an operation
func (u UpstreamConfig) Endpoint(name string) string {
	if p, ok := u.Endpoints[name]; ok && p != "" {
		return p
	}
	return DefaultEndpoints()[name]
}

// AhamoveConfig holds the delivery partner API settings
type AhamoveConfig struct {
	BaseURL          string
	Token            string
	Timeout          time.Duration
	DefaultServiceID string
	RatePerSecond    float64
	Burst            int
	PickupAddress    string
	PickupName       string
	PickupPhone      string
}

// RefreshConfig controls the order board auto-refresh poller
type RefreshConfig struct {
	Enabled         bool
	IntervalSeconds int
}

// Interval returns the refresh interval as a duration
func (r RefreshConfig) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

// CacheConfig selects the shipper cache backend
type CacheConfig struct {
	Driver     string // memory, redis
	ShipperTTL time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// UsersConfig selects the user store
type UsersConfig struct {
	Driver          string // memory, sqlite, postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	SeedAdminName   string
	SeedAdminPass   string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with HQ_ prefix (e.g., HQ_UPSTREAM_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path searches
// the default locations.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/app")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("HQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The refresh interval predates the HQ_ prefix and is still read from its old name
	_ = v.BindEnv("refresh.interval_seconds", "HQ_REFRESH_INTERVAL_SECONDS", "AUTO_REFRESH_INTERVAL")

	v.SetDefault("refresh.enabled", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("http.rate_limit_enabled", false)

	endpoints := DefaultEndpoints()
	for name, p := range v.GetStringMapString("upstream.endpoints") {
		endpoints[name] = p
	}

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Port:     v.GetString("app.port"),
			Timezone: v.GetString("app.timezone"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			RequestTimeout:    v.GetDuration("http.request_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			LoginRateLimit:    v.GetInt("http.login_rate_limit"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Upstream: UpstreamConfig{
			BaseURL:          v.GetString("upstream.base_url"),
			Timeout:          v.GetDuration("upstream.timeout"),
			RoleHeader:       v.GetString("upstream.role_header"),
			ServiceToken:     v.GetString("upstream.service_token"),
			ServiceRole:      v.GetString("upstream.service_role"),
			MaxResponseBytes: v.GetInt64("upstream.max_response_bytes"),
			Endpoints:        endpoints,
		},
		Ahamove: AhamoveConfig{
			BaseURL:          v.GetString("ahamove.base_url"),
			Token:            v.GetString("ahamove.token"),
			Timeout:          v.GetDuration("ahamove.timeout"),
			DefaultServiceID: v.GetString("ahamove.default_service_id"),
			RatePerSecond:    v.GetFloat64("ahamove.rate_per_second"),
			Burst:            v.GetInt("ahamove.burst"),
			PickupAddress:    v.GetString("ahamove.pickup_address"),
			PickupName:       v.GetString("ahamove.pickup_name"),
			PickupPhone:      v.GetString("ahamove.pickup_phone"),
		},
		Refresh: RefreshConfig{
			Enabled:         v.GetBool("refresh.enabled"),
			IntervalSeconds: v.GetInt("refresh.interval_seconds"),
		},
		Cache: CacheConfig{
			Driver:     v.GetString("cache.driver"),
			ShipperTTL: v.GetDuration("cache.shipper_ttl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Users: UsersConfig{
			Driver:          v.GetString("users.driver"),
			DSN:             v.GetString("users.dsn"),
			MaxOpenConns:    v.GetInt("users.max_open_conns"),
			MaxIdleConns:    v.GetInt("users.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("users.conn_max_lifetime"),
			SeedAdminName:   v.GetString("users.seed_admin_name"),
			SeedAdminPass:   v.GetString("users.seed_admin_password"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "heoquay-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Asia/Ho_Chi_Minh"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 25 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 300
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.LoginRateLimit == 0 {
		cfg.HTTP.LoginRateLimit = 10
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Role", "role"}
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 20 * time.Second
	}
	if cfg.Upstream.RoleHeader == "" {
		cfg.Upstream.RoleHeader = "role"
	}
	if cfg.Upstream.MaxResponseBytes == 0 {
		cfg.Upstream.MaxResponseBytes = 8 << 20 // 8MB, QR images included
	}
	if cfg.Ahamove.BaseURL == "" {
		cfg.Ahamove.BaseURL = "https://apistg.ahamove.com"
	}
	if cfg.Ahamove.Timeout == 0 {
		cfg.Ahamove.Timeout = 15 * time.Second
	}
	if cfg.Ahamove.DefaultServiceID == "" {
		cfg.Ahamove.DefaultServiceID = "SGN-BIKE"
	}
	if cfg.Ahamove.RatePerSecond == 0 {
		cfg.Ahamove.RatePerSecond = 5
	}
	if cfg.Ahamove.Burst == 0 {
		cfg.Ahamove.Burst = 5
	}
	if cfg.Refresh.IntervalSeconds == 0 {
		cfg.Refresh.IntervalSeconds = 300
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = "memory"
	}
	if cfg.Cache.ShipperTTL == 0 {
		cfg.Cache.ShipperTTL = 10 * time.Minute
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Users.Driver == "" {
		cfg.Users.Driver = "memory"
	}
	if cfg.Users.MaxOpenConns == 0 {
		cfg.Users.MaxOpenConns = 10
	}
	if cfg.Users.MaxIdleConns == 0 {
		cfg.Users.MaxIdleConns = 2
	}
	if cfg.Users.ConnMaxLifetime == 0 {
		cfg.Users.ConnMaxLifetime = 60
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Upstream.BaseURL != "" {
		u, err := url.Parse(c.Upstream.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("upstream.base_url must be an absolute URL, got %q", c.Upstream.BaseURL)
		}
	}
	if c.Refresh.IntervalSeconds < 0 {
		return fmt.Errorf("refresh.interval_seconds cannot be negative")
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.driver must be memory or redis, got %q", c.Cache.Driver)
	}
	switch c.Users.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Users.DSN == "" {
			return fmt.Errorf("users.dsn is required for users.driver=%s", c.Users.Driver)
		}
	default:
		return fmt.Errorf("users.driver must be memory, sqlite or postgres, got %q", c.Users.Driver)
	}
	if c.Users.MaxIdleConns > c.Users.MaxOpenConns {
		return fmt.Errorf("users.max_idle_conns (%d) cannot exceed users.max_open_conns (%d)",
			c.Users.MaxIdleConns, c.Users.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Upstream.BaseURL == "" {
			return fmt.Errorf("upstream.base_url is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}
