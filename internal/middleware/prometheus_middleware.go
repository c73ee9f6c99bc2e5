package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMiddleware собирает HTTP-метрики REST-интерфейса генератора.
//
//	mw := middleware.NewPrometheusMiddleware("worldgen_api", registry)
//	r.Use(mw.Handler())
//	mw.RegisterMetricsEndpoint(r)
//
// Метрики:
// * http_request_duration_seconds{method,path,status} (histogram)
// * http_requests_inflight (gauge)
// * http_request_errors_total{method,path,status} (counter, 4xx/5xx)
type PrometheusMiddleware struct {
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewPrometheusMiddleware регистрирует метрики в registry.
// При registry == nil используются дефолтные регистр и сборщик.
func NewPrometheusMiddleware(service string, registry *prometheus.Registry) *PrometheusMiddleware {
	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if registry != nil {
		reg, gatherer = registry, registry
	}

	pm := &PrometheusMiddleware{
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: service,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность HTTP-запросов.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: service,
			Name:      "http_requests_inflight",
			Help:      "Текущее количество обрабатываемых HTTP-запросов.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: service,
			Name:      "http_request_errors_total",
			Help:      "Общее число запросов, завершившихся ошибкой (4xx/5xx).",
		}, []string{"method", "path", "status"}),
		gatherer: gatherer,
	}

	reg.MustRegister(pm.reqDuration, pm.reqInflight, pm.reqErrors)
	return pm
}

// Handler возвращает gin.HandlerFunc для router.Use()
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		pm.reqInflight.Inc()
		defer pm.reqInflight.Dec()

		c.Next()

		code := c.Writer.Status()
		status := strconv.Itoa(code)
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		pm.reqDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		if code >= http.StatusBadRequest {
			pm.reqErrors.WithLabelValues(method, path, status).Inc()
		}
	}
}

// RegisterMetricsEndpoint добавляет GET /metrics, отдающий метрики сборщика
func (pm *PrometheusMiddleware) RegisterMetricsEndpoint(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(pm.gatherer, promhttp.HandlerOpts{})))
}
