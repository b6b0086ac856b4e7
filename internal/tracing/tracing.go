// Package tracing sets up OpenTelemetry tracing for the scraper.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Exporters.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlphttp"
)

// InstrumentationName is the name of the scraper tracers.
const InstrumentationName = "github.com/slok/scraper"

// Config is the tracing configuration.
type Config struct {
	Exporter    string
	Endpoint    string
	Insecure    bool
	SampleRatio float64
	ServiceName string
	// Out is where the stdout exporter writes, os.Stdout by default.
	Out io.Writer
}

func (c *Config) defaults() error {
	c.Exporter = strings.ToLower(strings.TrimSpace(c.Exporter))
	if c.Exporter == "" {
		c.Exporter = ExporterNone
	}
	switch c.Exporter {
	case ExporterNone, ExporterStdout, ExporterOTLPHTTP:
	default:
		return fmt.Errorf("unknown exporter %q", c.Exporter)
	}
	if c.Endpoint == "" {
		c.Endpoint = "http://localhost:4318"
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = 1
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("sample ratio must be between 0 and 1")
	}
	if c.ServiceName == "" {
		c.ServiceName = "scraper"
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	return nil
}

// Provider is a tracer provider plus its shutdown.
type Provider struct {
	trace.TracerProvider
	shutdown func(context.Context) error
}

// Tracer returns the scraper tracer.
func (p Provider) Tracer() trace.Tracer { return p.TracerProvider.Tracer(InstrumentationName) }

// Shutdown flushes and stops the exporter.
func (p Provider) Shutdown(ctx context.Context) error { return p.shutdown(ctx) }

// Noop returns a provider that doesn't record anything.
func Noop() Provider {
	return Provider{
		TracerProvider: noop.NewTracerProvider(),
		shutdown:       func(context.Context) error { return nil },
	}
}

// NewProvider returns a tracer provider for the configured exporter. It also
// sets it as the global provider so instrumented libraries use it.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	if err := cfg.defaults(); err != nil {
		return Provider{}, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Exporter == ExporterNone {
		return Noop(), nil
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return Provider{}, fmt.Errorf("could not create exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)))
	if err != nil {
		return Provider{}, fmt.Errorf("could not create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return Provider{TracerProvider: tp, shutdown: tp.Shutdown}, nil
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(cfg.Out), stdouttrace.WithPrettyPrint())
	case ExporterOTLPHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}

	return nil, fmt.Errorf("unknown exporter %q", cfg.Exporter)
}
