package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/nfrund/livetone/internal/config"
)

func TestTracingBridge_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	bridge := NewWatermillBridgeWithTracer(tp.Tracer("test"))
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	require.NoError(t, bridge.Subscribe(ctx, "code.received", func(_ context.Context, msg Message) error {
		received <- msg
		return nil
	}))

	require.NoError(t, bridge.Publish(ctx, Message{
		Topic:   "code.received",
		Source:  "client-1",
		Payload: []byte(`{"code":"LiveTone.start()"}`),
	}))

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	assert.Eventually(t, func() bool {
		names := map[string]bool{}
		for _, s := range recorder.Ended() {
			names[s.Name()] = true
		}
		return names["pubsub.publish.code.received"] && names["pubsub.process.code.received"]
	}, time.Second, 10*time.Millisecond)
}

func TestPayloadPreview(t *testing.T) {
	assert.Equal(t, "short", payloadPreview([]byte("short")))

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	preview := payloadPreview(long)
	assert.Len(t, preview, 103)
	assert.Contains(t, preview, "...")
}

func TestSetupOTel(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled tracing", func(t *testing.T) {
		tracer, cleanup, err := SetupOTel(ctx, TracingConfig{Enabled: false})
		require.NoError(t, err)
		require.NotNil(t, tracer)

		_, span := tracer.Start(ctx, "test")
		span.End()
		cleanup()
	})

	t.Run("enabled tracing with unreachable collector", func(t *testing.T) {
		tracer, cleanup, err := SetupOTel(ctx, TracingConfig{
			Enabled:     true,
			ServiceName: "test-service",
			ZipkinURL:   "http://invalid-url:9411/api/v2/spans",
		})
		require.NoError(t, err)
		require.NotNil(t, tracer)
		cleanup()
	})
}

func TestSetupOTel_SampleRatio(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		ratio   float64
		sampled bool
	}{
		{0, false},
		{1, true},
	}

	for _, tc := range testCases {
		tracer, cleanup, err := SetupOTel(ctx, TracingConfig{
			Enabled:     true,
			ServiceName: "test-service",
			ZipkinURL:   "http://invalid-url:9411/api/v2/spans",
			SampleRatio: tc.ratio,
		})
		require.NoError(t, err)

		_, span := tracer.Start(ctx, "sampled")
		assert.Equal(t, tc.sampled, span.SpanContext().IsSampled())
		span.End()
		cleanup()
	}
}

func TestTracingConfigFrom(t *testing.T) {
	vars := map[string]string{
		"LIVETONE_TRACING_ENABLED":      "true",
		"LIVETONE_TRACING_SERVICE_NAME": "studio",
		"LIVETONE_TRACING_SAMPLE_RATIO": "0.25",
	}
	appCfg, err := config.FromEnv(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
	require.NoError(t, err)

	cfg := TracingConfigFrom(appCfg, "0.1.0")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "studio", cfg.ServiceName)
	assert.Equal(t, "0.1.0", cfg.Version)
	assert.Equal(t, "http://localhost:9411/api/v2/spans", cfg.ZipkinURL)
	assert.InDelta(t, 0.25, cfg.SampleRatio, 1e-9)
}
