package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names
const (
	MetricHTTPRequestsTotal       = "heoquay_http_requests_total"
	MetricHTTPRequestDuration     = "heoquay_http_request_duration_seconds"
	MetricUpstreamRequestsTotal   = "heoquay_upstream_requests_total"
	MetricUpstreamRequestDuration = "heoquay_upstream_request_duration_seconds"
	MetricBoardRefreshTotal       = "heoquay_board_refresh_total"
	MetricBoardOrders             = "heoquay_board_orders"
	MetricShipperCacheTotal       = "heoquay_shipper_cache_total"
)

// Metrics is the application's Prometheus instrumentation. It uses its own
// registry so tests can create as many instances as they like.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	boardRefresh     *prometheus.CounterVec
	boardOrders      prometheus.Gauge
	shipperCache     *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricUpstreamRequestsTotal,
			Help: "Calls to the order webhook API, by endpoint and status.",
		}, []string{"endpoint", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricUpstreamRequestDuration,
			Help:    "Order webhook API latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		}, []string{"endpoint"}),
		boardRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricBoardRefreshTotal,
			Help: "Order board refreshes, by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		boardOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricBoardOrders,
			Help: "Orders held in the current board snapshot.",
		}),
		shipperCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricShipperCacheTotal,
			Help: "Shipper cache lookups, by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.upstreamRequests,
		m.upstreamDuration,
		m.boardRefresh,
		m.boardOrders,
		m.shipperCache,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveUpstream records one webhook call; status 0 means no response
func (m *Metrics) ObserveUpstream(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamRequests.WithLabelValues(endpoint, label).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveRefresh records one order board refresh
func (m *Metrics) ObserveRefresh(trigger string, err error, orders int) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	} else {
		m.boardOrders.Set(float64(orders))
	}
	m.boardRefresh.WithLabelValues(trigger, outcome).Inc()
}

// ObserveCache records a shipper cache hit or miss
func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.shipperCache.WithLabelValues("hit").Inc()
		return
	}
	m.shipperCache.WithLabelValues("miss").Inc()
}
