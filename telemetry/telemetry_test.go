package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// restoreProvider puts the global tracer provider back after a test swaps it
func restoreProvider(t *testing.T) {
	t.Helper()
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
}

func TestEnabled(t *testing.T) {
	t.Setenv(EndpointEnv, "")
	assert.False(t, Enabled())

	t.Setenv(EndpointEnv, "http://localhost:4318")
	assert.True(t, Enabled())
}

func TestTracerUsesGlobalProvider(t *testing.T) {
	restoreProvider(t)

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	_, span := Tracer("service").Start(context.Background(), "service.move")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "service.move", ended[0].Name())
	assert.Equal(t, "tile2048/service", ended[0].InstrumentationScope().Name)
}

func TestSetup(t *testing.T) {
	restoreProvider(t)
	t.Setenv(EndpointEnv, "http://127.0.0.1:4318")

	shutdown, err := Setup(context.Background(), "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "Setup installs the SDK provider globally")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx))
}
