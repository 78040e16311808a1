package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracingStdout(t *testing.T) {
	cfg := DefaultConfig()
	tp, err := InitTracing(cfg)
	require.NoError(t, err)
	require.NotNil(t, tp)
	defer tp.Shutdown(context.Background())

	ctx, span := tp.GetTracer("test").Start(context.Background(), "unit-test")
	span.End()
	assert.NotNil(t, ctx)
}

func TestInitTracingDisabled(t *testing.T) {
	tp, err := InitTracing(&Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestInitTracingUnsupportedExporter(t *testing.T) {
	_, err := InitTracing(&Config{Enabled: true, ExporterType: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestModuleLoadAndPauseSpans(t *testing.T) {
	tp, err := InitTracing(&Config{Enabled: false})
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	ctx, span := ModuleLoadSpan(context.Background(), "main")
	span.End()

	ctx, span = PauseSpan(ctx, "main", 12)
	defer span.End()

	SetAttributes(ctx)
	AddEvent(ctx, "breakpoint-hit")
}

func TestWithSpanPropagatesError(t *testing.T) {
	tp, err := InitTracing(&Config{Enabled: false})
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	boom := errors.New("boom")
	err = WithSpan(context.Background(), "failing-op", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
