// Package telemetry wires the optional trace pipeline. When disabled the
// global tracer provider stays a no-op and span creation costs nothing.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const serviceName = "unreal-companion"

// Shutdown flushes and stops the trace pipeline. Safe to call when telemetry
// was never enabled.
type Shutdown func(context.Context) error

// Setup installs a stdout-exporting tracer provider as the global provider
// and returns its shutdown hook. Spans are written to w as they end.
func Setup(w io.Writer) (Shutdown, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("building trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// Disabled returns a no-op shutdown hook without touching the global
// provider.
func Disabled() Shutdown {
	return func(context.Context) error { return nil }
}
