package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/annel0/worldgen/internal/logging"
)

// ShutdownFunc останавливает провайдер и сбрасывает накопленные спаны
type ShutdownFunc func(context.Context) error

// InitTelemetry настраивает OTLP/HTTP экспортер (по умолчанию localhost:4318)
// и устанавливает глобальный TracerProvider.
func InitTelemetry(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	tp, err := newProvider(ctx, serviceName, sdktrace.WithBatcher(exp))
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	logging.Info("📡 OpenTelemetry инициализирован (OTLP → 4318, service=%s)", serviceName)

	return shutdownFor(tp), nil
}

// NewInMemoryProvider возвращает провайдер с синхронным экспортом в exporter.
// Глобальный провайдер не меняется.
func NewInMemoryProvider(ctx context.Context, serviceName string, exporter sdktrace.SpanExporter) (*sdktrace.TracerProvider, error) {
	return newProvider(ctx, serviceName, sdktrace.WithSyncer(exporter))
}

func newProvider(ctx context.Context, serviceName string, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	opts = append(opts, sdktrace.WithResource(res))
	return sdktrace.NewTracerProvider(opts...), nil
}

func shutdownFor(tp *sdktrace.TracerProvider) ShutdownFunc {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}
}
