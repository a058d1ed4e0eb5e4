package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics(t *testing.T) {
	metrics := telemetry.NewMetrics()

	router := gin.New()
	router.Use(HTTPMetrics(metrics, "/metrics"))
	router.GET("/api/orders/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, path := range []string{"/api/orders/1", "/api/orders/2", "/nowhere", "/metrics"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	count, err := testutil.GatherAndCount(metrics.Registry(), telemetry.MetricHTTPRequestsTotal)
	require.NoError(t, err)
	// one series for the route pattern, one for unmatched, none for /metrics
	assert.Equal(t, 2, count)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `heoquay_http_requests_total{method="GET",route="/api/orders/:id",status="200"} 2`)
	assert.Contains(t, body, `heoquay_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}
