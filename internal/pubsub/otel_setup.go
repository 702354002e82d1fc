package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	tracerName      = "livetone-pubsub"
	shutdownTimeout = 5 * time.Second
)

// TracingConfig controls the Zipkin exporter behind the bus tracer.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Version     string
	ZipkinURL   string
	// SampleRatio is the fraction of root traces kept, in [0, 1].
	SampleRatio float64
}

// SetupOTel returns the tracer the bus middleware records with, plus a flush
// func for exit. Disabled tracing yields a no-op tracer and no exporter.
func SetupOTel(ctx context.Context, cfg TracingConfig) (trace.Tracer, func(), error) {
	if !cfg.Enabled {
		return noop.NewTracerProvider().Tracer(tracerName), func() {}, nil
	}

	exporter, err := zipkin.New(cfg.ZipkinURL)
	if err != nil {
		return nil, nil, fmt.Errorf("zipkin exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.Version),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	slog.Debug("Tracing enabled", "service", cfg.ServiceName, "zipkin_url", cfg.ZipkinURL, "sample_ratio", cfg.SampleRatio)

	// Flushes on its own deadline; ctx is normally done by exit.
	flush := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to flush traces", "error", err)
		}
	}
	return tp.Tracer(tracerName), flush, nil
}
