package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultTracerConfig(t *testing.T) {
	t.Run("returns expected defaults", func(t *testing.T) {
		cfg := DefaultTracerConfig()

		assert.False(t, cfg.Enabled)
		assert.Equal(t, "localhost:4317", cfg.Endpoint)
		assert.Equal(t, "sentinelmcp", cfg.ServiceName)
		assert.Equal(t, "development", cfg.Environment)
		assert.Equal(t, 1.0, cfg.SampleRate)
		assert.True(t, cfg.Insecure)
	})

	t.Run("returns new instance each time", func(t *testing.T) {
		cfg1 := DefaultTracerConfig()
		cfg2 := DefaultTracerConfig()

		cfg1.ServiceName = "modified"
		assert.Equal(t, "sentinelmcp", cfg2.ServiceName)
	})
}

func TestNewTracer_Disabled(t *testing.T) {
	cfg := DefaultTracerConfig()
	cfg.Enabled = false

	tracer, err := NewTracer(context.Background(), cfg, "test")
	require.NoError(t, err)
	require.NotNil(t, tracer)

	assert.False(t, tracer.IsEnabled())
	assert.NotNil(t, tracer.Tracer())

	// Disabled tracer still hands out usable no-op spans.
	ctx, span := tracer.StartSpan(context.Background(), "test-span")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()

	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestTracer_SpanHelpers(t *testing.T) {
	cfg := DefaultTracerConfig()
	cfg.Enabled = false

	tracer, err := NewTracer(context.Background(), cfg, "test")
	require.NoError(t, err)

	t.Run("RecordError tolerates nil error", func(t *testing.T) {
		ctx, span := tracer.StartSpan(context.Background(), "op")
		defer span.End()

		RecordError(ctx, nil)
		RecordError(ctx, errors.New("boom"))
	})

	t.Run("SetSpanAttributes on no-op span", func(t *testing.T) {
		ctx, span := tracer.StartSpan(context.Background(), "op")
		defer span.End()

		SetSpanAttributes(ctx, attribute.String("key", "value"))
	})

	t.Run("ExtractTraceID without recording span is empty", func(t *testing.T) {
		assert.Empty(t, ExtractTraceID(context.Background()))

		ctx, span := tracer.StartSpan(context.Background(), "op")
		defer span.End()
		assert.Empty(t, ExtractTraceID(ctx))
	})
}

func TestBackendSpanHelpers(t *testing.T) {
	ctx, span := StartBackendSpan(context.Background(), "alerts", "list")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	EndBackendSpan(span, nil)

	_, span = StartBackendSpan(context.Background(), "inventory", "search")
	EndBackendSpan(span, errors.New("bad gateway"))
}

func TestStartToolSpan(t *testing.T) {
	ctx, span := StartToolSpan(context.Background(), "get_alerts")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()
}
