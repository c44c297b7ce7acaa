package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// tracing owns the tracer provider installed for one command run.
type tracing struct {
	provider *sdktrace.TracerProvider
}

// startTracing exports spans to the OTLP gRPC endpoint. With no endpoint,
// the global no-op provider is left in place and a nil *tracing is returned.
func startTracing(ctx context.Context, endpoint string) (*tracing, error) {
	if endpoint == "" {
		return nil, nil //nolint:nilnil // Tracing is disabled.
	}

	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)

	slog.Debug("exporting traces", slog.String("endpoint", endpoint))

	return &tracing{provider: tp}, nil
}

// shutdown flushes pending spans. It is a no-op on a nil *tracing.
func (t *tracing) shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := t.provider.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}

	return nil
}
