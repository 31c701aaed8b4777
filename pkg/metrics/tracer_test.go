package metrics

import (
	"context"
	"sync"
	"testing"

	"github.com/cedana/netbench/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInitTracer_Disabled(t *testing.T) {
	var wg sync.WaitGroup
	require.NoError(t, InitTracer(context.Background(), &wg, config.Tracing{}, "test"))

	_, ok := otel.GetTracerProvider().(noop.TracerProvider)
	assert.True(t, ok, "disabled tracing should install a noop provider")
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	var wg sync.WaitGroup
	err := InitTracer(context.Background(), &wg, config.Tracing{Enabled: true}, "test")
	assert.Error(t, err)
}

func TestInitTracer_ShutsDownWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// the gRPC client connects lazily, nothing has to listen here
	err := InitTracer(ctx, &wg, config.Tracing{Enabled: true, Endpoint: "127.0.0.1:4317", Insecure: true}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)

	cancel()
	wg.Wait()
}
