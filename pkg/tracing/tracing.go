// Package tracing sets up OpenTelemetry spans around the debugger's own
// control flow: a module load, an instrumentation pass, a paused-waiting-for
// operator interval. It traces the tool, not the target program; the target
// program has no concept of spans.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the configuration for the tracing system.
type Config struct {
	// ServiceName identifies this debugger instance in exported spans.
	ServiceName string

	// ServiceVersion is the version of gubed itself.
	ServiceVersion string

	// ExporterType selects "stdout" or "otlp".
	ExporterType string

	// OTLPEndpoint is the gRPC endpoint used when ExporterType is "otlp".
	OTLPEndpoint string

	// Enabled turns tracing on. When false, InitTracing returns a provider
	// with no exporter, so callers never need to nil-check, and leaves the
	// global tracer provider unchanged.
	Enabled bool
}

// DefaultConfig returns the configuration used when a session starts with no
// --otlp-endpoint flag: a pretty-printed stdout exporter, good for watching a
// single debug session's spans scroll by without standing up a collector.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "gubed",
		ServiceVersion: "0.1.0",
		ExporterType:   "stdout",
		Enabled:        true,
	}
}

// TracerProvider wraps the OpenTelemetry SDK tracer provider and its config.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	config   *Config
}

// InitTracing builds and installs the global tracer provider described by
// config. The returned TracerProvider must be shut down when the debug
// session ends so buffered spans are flushed.
func InitTracing(config *Config) (*TracerProvider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if !config.Enabled {
		return &TracerProvider{
			provider: sdktrace.NewTracerProvider(),
			config:   config,
		}, nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch config.ExporterType {
	case "stdout", "":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		if config.OTLPEndpoint == "" {
			config.OTLPEndpoint = "localhost:4317"
		}
		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(config.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		exporter, err = otlptrace.New(context.Background(), client)
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", config.ExporterType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return &TracerProvider{provider: tp, config: config}, nil
}

// Shutdown flushes and stops the tracer provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	return tp.provider.Shutdown(ctx)
}

// GetTracer returns a named tracer backed by this provider.
func (tp *TracerProvider) GetTracer(name string) trace.Tracer {
	if tp.provider == nil {
		return otel.Tracer(name)
	}
	return tp.provider.Tracer(name)
}

// Tracer returns the global gubed tracer.
func Tracer() trace.Tracer {
	return otel.Tracer("gubed")
}

// StartSpan starts a span under the global gubed tracer.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, spanName, opts...)
}

// ModuleLoadSpan starts a span covering the read, cache lookup, and
// instrumentation of one module.
func ModuleLoadSpan(ctx context.Context, moduleName string) (context.Context, trace.Span) {
	return StartSpan(ctx, "module.load", trace.WithAttributes(
		attribute.String("gubed.module", moduleName),
	))
}

// PauseSpan starts a span covering the interval between a probe callback
// pausing the VM and the UI returning a DebugAction.
func PauseSpan(ctx context.Context, moduleName string, line int) (context.Context, trace.Span) {
	return StartSpan(ctx, "debug.pause", trace.WithAttributes(
		attribute.String("gubed.module", moduleName),
		attribute.Int("gubed.line", line),
	))
}

// SetError marks the current span as failed.
func SetError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes sets attributes on the current span.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// WithSpan runs fn inside a new span, recording an error status if fn fails.
func WithSpan(ctx context.Context, spanName string, fn func(context.Context) error, opts ...trace.SpanStartOption) error {
	ctx, span := StartSpan(ctx, spanName, opts...)
	defer span.End()

	if err := fn(ctx); err != nil {
		SetError(ctx, err)
		return err
	}
	return nil
}
