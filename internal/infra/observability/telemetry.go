package observability

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TelemetryProvider wraps the tracer and meter a node uses to
// instrument its election and merge loop.
type TelemetryProvider struct {
	config *Config
	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter
}

// NewTelemetryProvider builds a TelemetryProvider from config. A
// disabled config still returns a usable provider backed by a noop
// tracer, so callers never need to nil-check it.
func NewTelemetryProvider(config *Config, logger *slog.Logger) (*TelemetryProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tp := &TelemetryProvider{config: config, logger: logger}

	if !config.Enabled {
		return tp, nil
	}

	tp.tracer = otel.Tracer(config.ServiceName)
	tp.meter = otel.Meter(config.ServiceName)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tp.logger.Info("telemetry provider initialized",
		slog.String("service", config.ServiceName),
		slog.String("version", config.Version),
		slog.String("environment", config.Environment),
		slog.Float64("sampling_ratio", config.SamplingRatio))

	return tp, nil
}

// GetTracer returns the configured tracer, or a noop tracer if the
// provider was built disabled.
func (tp *TelemetryProvider) GetTracer() trace.Tracer {
	if tp.tracer == nil {
		return noop.NewTracerProvider().Tracer("noop")
	}
	return tp.tracer
}

// GetMeter returns the configured meter, or a noop-backed one if the
// provider was built disabled.
func (tp *TelemetryProvider) GetMeter() metric.Meter {
	if tp.meter == nil {
		return otel.Meter("noop")
	}
	return tp.meter
}

// CreateSpan starts a span under the provider's tracer.
func (tp *TelemetryProvider) CreateSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return tp.GetTracer().Start(ctx, name, opts...)
}

// TelemetryMiddleware wraps an http.Handler so every request gets a
// span carrying its method, path, and resulting status code.
func (tp *TelemetryProvider) TelemetryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tp.CreateSpan(r.Context(), "http.request",
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.path", sanitizeEndpoint(r.URL.Path)),
				),
			)
			defer span.End()

			start := time.Now()
			wrapped := &statusCapturingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			span.SetAttributes(
				attribute.Int("http.status_code", wrapped.statusCode),
				attribute.Float64("http.duration_seconds", time.Since(start).Seconds()),
			)
		})
	}
}

// Shutdown flushes any pending telemetry. With no real exporter wired
// up yet there is nothing to flush, but the method exists so callers
// can treat provider shutdown uniformly with the rest of the node's
// components.
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	tp.logger.Info("telemetry provider shutdown completed")
	return nil
}

type statusCapturingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusCapturingWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// sanitizeEndpoint replaces path segments that look like numeric IDs
// with a placeholder, so status/health paths group into stable span
// names regardless of which node served them.
func sanitizeEndpoint(path string) string {
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if isNumeric(part) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
