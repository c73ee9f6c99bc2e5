package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/worldgen/internal/logging"
)

func TestPrometheusMiddleware_BasicMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	promMw := NewPrometheusMiddleware("test", registry)
	r.Use(promMw.Handler())

	r.GET("/test", func(c *gin.Context) {
		time.Sleep(5 * time.Millisecond)
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/error", func(c *gin.Context) {
		c.JSON(500, gin.H{"error": "test error"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest("GET", "/error", nil)
	r.ServeHTTP(w2, req2)
	assert.Equal(t, 500, w2.Code)

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	var durationFound, errorsFound bool
	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case "test_http_request_duration_seconds":
			durationFound = true
			assert.Equal(t, "Длительность HTTP-запросов.", mf.GetHelp())
			assert.Len(t, mf.Metric, 2)
		case "test_http_request_errors_total":
			errorsFound = true
			require.Len(t, mf.Metric, 1)
			assert.Equal(t, float64(1), mf.Metric[0].GetCounter().GetValue())
		}
	}

	assert.True(t, durationFound, "Метрика длительности не найдена")
	assert.True(t, errorsFound, "Метрика ошибок не найдена")
}

func TestPrometheusMiddleware_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	promMw := NewPrometheusMiddleware("test", registry)
	r.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(r)
	r.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(w, req)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/metrics", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_request_duration_seconds")
	assert.Contains(t, w.Body.String(), `path="/ping"`)
}

func TestPrometheusMiddleware_Inflight(t *testing.T) {
	registry := prometheus.NewRegistry()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	promMw := NewPrometheusMiddleware("test", registry)
	r.Use(promMw.Handler())

	var inflight float64
	r.GET("/slow", func(c *gin.Context) {
		families, _ := registry.Gather()
		for _, mf := range families {
			if mf.GetName() == "test_http_requests_inflight" {
				inflight = mf.Metric[0].GetGauge().GetValue()
			}
		}
		c.Status(204)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/slow", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, float64(1), inflight, "Во время обработки запрос учитывается")

	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "test_http_requests_inflight" {
			assert.Equal(t, float64(0), mf.Metric[0].GetGauge().GetValue())
		}
	}
}

func TestRequestLogger_TraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger("api", &buf)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRequestLogger(logger).Handler())

	var seen string
	r.GET("/trace", func(c *gin.Context) {
		seen = c.GetString(TraceIDKey)
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/trace", nil)
	r.ServeHTTP(w, req)

	require.NotEmpty(t, seen, "trace-ID должен быть выставлен")
	assert.Equal(t, seen, w.Header().Get("X-Trace-Id"))
	assert.True(t, strings.Contains(buf.String(), "trace="+seen), "trace-ID попадает в лог")
}
