package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

// logLine runs fn against a logger writing to a buffer and decodes the single
// JSON line it emits.
func logLine(t *testing.T, fn func(l *slog.Logger)) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	l := NewWithWriter("teamboard-test", "info", &buf)
	fn(l)
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func spanContext(t *testing.T, traceHex, spanHex string) trace.SpanContext {
	t.Helper()
	traceID, err := trace.TraceIDFromHex(traceHex)
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex(spanHex)
	require.NoError(t, err)
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
}

func TestNew_TagsServiceName(t *testing.T) {
	out := logLine(t, func(l *slog.Logger) {
		l.Info("boot")
	})
	assert.Equal(t, "teamboard-test", out["service"])
}

func TestParseLevel_UnknownFallsBackToInfo(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("verbose"))
	assert.NotEqual(t, parseLevel("debug"), parseLevel("warn"))
}

func TestWithContext_CorrelationAndUser(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("teamboard-test", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "corr-42")
	ctx = WithUserID(ctx, "u-42")
	WithContext(ctx, l).Info("enriched")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "corr-42", out["correlation_id"])
	assert.Equal(t, "u-42", out["user_id"])
}

func TestWithContext_EmptyContextAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("teamboard-test", "info", &buf)

	WithContext(context.Background(), l).Info("bare")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.NotContains(t, out, "correlation_id")
	assert.NotContains(t, out, "user_id")
	assert.NotContains(t, out, "trace_id")
	assert.NotContains(t, out, "span_id")
}

func TestWithContext_TraceIDs(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("teamboard-test", "info", &buf)

	sc := spanContext(t, "4bf92f3577b34da6a3ce929d0e0e4736", "00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	WithContext(ctx, l).Info("traced")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestFromContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("teamboard-test", "info", &buf)

	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

func TestFromContext_FallbackIsUsable(t *testing.T) {
	got := FromContext(context.Background())
	require.NotNil(t, got)
	got.Debug("must not panic")
}
