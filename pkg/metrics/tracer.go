package metrics

// Span export. Scenario spans are always created, they only leave the
// process when tracing is enabled in the config.

import (
	"context"
	"fmt"
	"sync"

	"github.com/cedana/netbench/pkg/config"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials"
)

const SERVICE_NAME = "netbench"

// InitTracer sets the global tracer provider. With tracing disabled a noop
// provider is used. Otherwise spans are batched to the OTLP collector, and
// the provider is flushed once ctx is done. wg is released after the flush.
func InitTracer(ctx context.Context, wg *sync.WaitGroup, conf config.Tracing, version string) error {
	if !conf.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return nil
	}

	if conf.Endpoint == "" {
		return fmt.Errorf("tracing enabled but no endpoint set")
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(conf.Endpoint)}
	if conf.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}

	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(SERVICE_NAME),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return fmt.Errorf("failed to create trace resource: %w", err)
	}

	traceProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := traceProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Str("endpoint", conf.Endpoint).Err(err).Msg("tracing shutdown failed")
		} else {
			log.Debug().Str("endpoint", conf.Endpoint).Msg("tracing shutdown")
		}
	}()

	log.Debug().Str("endpoint", conf.Endpoint).Msg("tracing initialized")

	return nil
}
