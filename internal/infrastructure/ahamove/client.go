package ahamove

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	tracerName = "github.com/heoquay/backend/ahamove"

	createOrderPath   = "/v1/order/create"
	searchAddressPath = "/v1/place/autocomplete"

	maxResponseBytes = 1 << 20
)

var (
	// ErrRequestFailed is returned when Ahamove rejects a request or cannot be reached
	ErrRequestFailed = errors.New("ahamove: request failed")
	// ErrNotConfigured is returned when no API token is configured
	ErrNotConfigured = errors.New("ahamove: token not configured")
)

// RequestError carries the Ahamove status and message of a rejected call
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("ahamove: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap makes errors.Is(err, ErrRequestFailed) hold
func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}

// Observer receives one observation per call, see upstream.Observer
type Observer interface {
	ObserveUpstream(endpoint string, status int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveUpstream(string, int, time.Duration) {}

// Client talks to the Ahamove delivery API. Calls share one token bucket.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	observer   Observer
	tracer     trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithObserver sets the call observer used for metrics
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLimiter replaces the token bucket
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates an Ahamove client from config
func NewClient(cfg config.AhamoveConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     zap.NewNop(),
		observer:   nopObserver{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a token is set
func (c *Client) Configured() bool {
	return c.token != "" && c.baseURL != ""
}

// CreateOrder dispatches a delivery
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if req.ServiceID == "" {
		return nil, fmt.Errorf("%w: missing service_id", ErrRequestFailed)
	}
	if len(req.Path) < 2 {
		return nil, fmt.Errorf("%w: path needs a pickup and a drop-off", ErrRequestFailed)
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = PaymentBalance
	}

	// order_time 0 asks for immediate pickup
	body := struct {
		Token     string `json:"token"`
		OrderTime int64  `json:"order_time"`
		CreateOrderRequest
	}{Token: c.token, CreateOrderRequest: req}

	var out CreateOrderResponse
	if err := c.call(ctx, "ahamove.create_order", http.MethodPost, createOrderPath, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchAddress returns address suggestions for query
func (c *Client) SearchAddress(ctx context.Context, query string) ([]Place, error) {
	q := url.Values{}
	q.Set("token", c.token)
	q.Set("query", query)

	var out []Place
	if err := c.call(ctx, "ahamove.search_address", http.MethodGet, searchAddressPath, q, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Place{}
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, name, method, path string, query url.Values, body, out any) error {
	if !c.Configured() {
		return fmt.Errorf("%w: %w", ErrRequestFailed, ErrNotConfigured)
	}

	ctx, span := c.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.request.method", method)))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, query, body, out)
	elapsed := time.Since(start)
	c.observer.ObserveUpstream(name, status, elapsed)
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}

	log := logger.L(ctx).With(zap.String("endpoint", name), zap.Duration("elapsed", elapsed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("ahamove call failed", zap.Int("status", status), zap.Error(err))
		return err
	}
	log.Debug("ahamove call", zap.Int("status", status))
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out any) (int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("ahamove: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, fmt.Errorf("ahamove: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: failed to read response: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.message() != "" {
			msg = apiErr.message()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, &RequestError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: malformed response: %v", ErrRequestFailed, err)
		}
	}
	return resp.StatusCode, nil
}
