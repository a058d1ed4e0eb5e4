package upstream

import (
	"bytes"
	"context"
	"encoding/json"
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
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/heoquay/backend/upstream"

// Observer receives one observation per completed or failed call.
// status is 0 when no response was received.
type Observer interface {
	ObserveUpstream(endpoint string, status int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveUpstream(string, int, time.Duration) {}

// Client is the single outbound client for the order webhook API
type Client struct {
	baseURL    string
	cfg        config.UpstreamConfig
	httpClient *http.Client
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

// NewClient creates a webhook client. Every call is bounded by cfg.Timeout.
func NewClient(cfg config.UpstreamConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
		observer:   nopObserver{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.MaxResponseBytes <= 0 {
		c.cfg.MaxResponseBytes = 8 << 20
	}
	if c.cfg.RoleHeader == "" {
		c.cfg.RoleHeader = "role"
	}
	return c
}

// Request describes one outbound call
type Request struct {
	Method   string
	Endpoint string // endpoint name, see config.Endpoint*
	Query    url.Values
	Body     any // JSON-encoded when non-nil
}

// Get calls endpoint with GET
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (*Result, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Endpoint: endpoint, Query: query})
}

// Post calls endpoint with a JSON body
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*Result, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Endpoint: endpoint, Body: body})
}

// Do performs the call with the credentials found in ctx. A non-2xx status is
// not an error: the Result carries it so the caller can relay it. The error is
// non-nil only when no usable response exists, and then wraps ErrUnavailable.
func (c *Client) Do(ctx context.Context, r Request) (*Result, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, ErrNotConfigured)
	}

	ctx, span := c.tracer.Start(ctx, "upstream."+r.Endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("upstream.endpoint", r.Endpoint),
			attribute.String("http.request.method", r.Method),
		))
	defer span.End()

	start := time.Now()
	res, err := c.do(ctx, r)
	elapsed := time.Since(start)

	status := 0
	if res != nil {
		status = res.StatusCode
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	c.observer.ObserveUpstream(r.Endpoint, status, elapsed)

	log := logger.L(ctx).With(
		zap.String("endpoint", r.Endpoint),
		zap.String("method", r.Method),
		zap.Duration("elapsed", elapsed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("upstream call failed", zap.Error(err))
		return nil, err
	}
	if !res.OK() {
		log.Info("upstream returned non-2xx", zap.Int("status", status))
	} else {
		log.Debug("upstream call", zap.Int("status", status))
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, r Request) (*Result, error) {
	target := c.baseURL + c.cfg.Endpoint(r.Endpoint)
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("upstream: failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("upstream: failed to create request: %w", err)
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, image/*;q=0.9, */*;q=0.8")

	creds := CredentialsFromContext(ctx)
	if creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}
	if creds.Role != "" {
		req.Header.Set(c.cfg.RoleHeader, creds.Role)
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
