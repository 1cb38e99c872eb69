package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/teamboardhq/teamboard/pkg/logger"
)

// requestLoggerLine runs one request through RequestLogger, has the handler
// log a line via the context logger, and returns the decoded JSON record.
func requestLoggerLine(t *testing.T, prepare func(*http.Request) *http.Request) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	base := logger.NewWithWriter("teamboard-server", "info", &buf)

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handled")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if prepare != nil {
		req = prepare(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record), "handler should have logged exactly one JSON line")
	return record
}

func TestRequestLogger_CorrelationIDFromContext(t *testing.T) {
	record := requestLoggerLine(t, func(r *http.Request) *http.Request {
		ctx := logger.WithCorrelationID(r.Context(), "corr-abc-123")
		return r.WithContext(ctx)
	})

	assert.Equal(t, "corr-abc-123", record["correlation_id"])
}

func TestRequestLogger_UserIDFromValidatedClaims(t *testing.T) {
	record := requestLoggerLine(t, func(r *http.Request) *http.Request {
		ctx := WithIdentity(r.Context(), &Claims{UserID: "user-7", Email: "lead@teamboard.io", Role: "team-lead"})
		return r.WithContext(ctx)
	})

	assert.Equal(t, "user-7", record["user_id"])
}

func TestRequestLogger_UserIDHeaderFallback(t *testing.T) {
	record := requestLoggerLine(t, func(r *http.Request) *http.Request {
		r.Header.Set("X-User-ID", "user-from-header")
		return r
	})

	assert.Equal(t, "user-from-header", record["user_id"])
}

func TestRequestLogger_ClaimsBeatHeader(t *testing.T) {
	record := requestLoggerLine(t, func(r *http.Request) *http.Request {
		r.Header.Set("X-User-ID", "spoofed")
		ctx := WithIdentity(r.Context(), &Claims{UserID: "authenticated-user"})
		return r.WithContext(ctx)
	})

	assert.Equal(t, "authenticated-user", record["user_id"])
}

func TestRequestLogger_TraceFields(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	record := requestLoggerLine(t, func(r *http.Request) *http.Request {
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		return r.WithContext(trace.ContextWithSpanContext(context.Background(), sc))
	})

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", record["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", record["span_id"])
}

func TestRequestLogger_OmitsAbsentFields(t *testing.T) {
	record := requestLoggerLine(t, nil)

	assert.NotContains(t, record, "user_id")
	assert.NotContains(t, record, "trace_id")
}
