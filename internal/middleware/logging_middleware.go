package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/worldgen/internal/logging"
)

// TraceIDKey - ключ gin.Context, под которым лежит trace-ID запроса
const TraceIDKey = "trace_id"

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи
type RequestLogger struct {
	logger *logging.Logger
}

// NewRequestLogger создаёт middleware; nil logger означает логгер компонента api
func NewRequestLogger(logger *logging.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.GetAPILogger()
	}
	return &RequestLogger{logger: logger}
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// trace-id из OpenTelemetry, если otelgin уже создал спан
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Header("X-Trace-Id", traceID)

		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		rl.logger.Debug("[HTTP] ▶ %s %s ip=%s trace=%s", method, path, c.ClientIP(), traceID)

		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			rl.logger.Error("[HTTP] ◀ %s %s %d %s trace=%s", method, path, status, time.Since(start), traceID)
			return
		}
		rl.logger.Info("[HTTP] ◀ %s %s %d %s trace=%s", method, path, status, time.Since(start), traceID)
	}
}
