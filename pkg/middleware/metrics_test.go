package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric collects from c and returns the first sample whose labels are a
// superset of want, or nil.
func findMetric(c prometheus.Collector, want map[string]string) *dto.Metric {
	ch := make(chan prometheus.Metric, 128)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}
		got := make(map[string]string, len(d.GetLabel()))
		for _, lp := range d.GetLabel() {
			got[lp.GetName()] = lp.GetValue()
		}
		matches := true
		for k, v := range want {
			if got[k] != v {
				matches = false
				break
			}
		}
		if matches {
			return d
		}
	}
	return nil
}

// metricsRouter mounts handler at pattern behind PrometheusMetrics so the chi
// route pattern is available as the path label.
func metricsRouter(service, pattern string, handler http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get(pattern, handler)
	return r
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	router := metricsRouter("count-svc", "/api/v1/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	m := findMetric(httpRequestsTotal, map[string]string{
		"service": "count-svc",
		"method":  "GET",
		"path":    "/api/v1/users/{id}",
		"status":  "200",
	})
	require.NotNil(t, m, "counter should be labeled with the route pattern, not raw paths")
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(3))
}

func TestPrometheusMetrics_ObservesDuration(t *testing.T) {
	router := metricsRouter("duration-svc", "/api/v1/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil))

	m := findMetric(httpRequestDuration, map[string]string{
		"service": "duration-svc",
		"status":  "201",
	})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}

func TestPrometheusMetrics_InFlightGaugeDuringRequest(t *testing.T) {
	var inFlight float64
	router := metricsRouter("inflight-svc", "/slow", func(w http.ResponseWriter, _ *http.Request) {
		if m := findMetric(httpRequestsInFlight, map[string]string{"service": "inflight-svc"}); m != nil {
			inFlight = m.GetGauge().GetValue()
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.GreaterOrEqual(t, inFlight, float64(1), "gauge should count the request while it is being served")

	m := findMetric(httpRequestsInFlight, map[string]string{"service": "inflight-svc"})
	require.NotNil(t, m)
	assert.Zero(t, m.GetGauge().GetValue(), "gauge should return to zero after the request")
}

func TestPrometheusMetrics_ImplicitOKStatus(t *testing.T) {
	router := metricsRouter("implicit-svc", "/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok")) // no explicit WriteHeader
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	m := findMetric(httpRequestsTotal, map[string]string{"service": "implicit-svc", "status": "200"})
	require.NotNil(t, m)
}

func TestRoutePattern_OutsideRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/raw", nil)
	assert.Equal(t, "unknown", routePattern(req))
}

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

type hijackRecorder struct {
	http.ResponseWriter
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

// bareWriter implements only http.ResponseWriter.
type bareWriter struct{ header http.Header }

func (b *bareWriter) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}
func (b *bareWriter) Write(p []byte) (int, error) { return len(p), nil }
func (b *bareWriter) WriteHeader(int)             {}

func TestMetricsResponseWriter_FlushDelegation(t *testing.T) {
	var _ http.Flusher = (*metricsResponseWriter)(nil)

	inner := &flushRecorder{ResponseWriter: httptest.NewRecorder()}
	rw := &metricsResponseWriter{ResponseWriter: inner}
	rw.Flush()
	assert.True(t, inner.flushed)

	// No panic when the underlying writer cannot flush.
	(&metricsResponseWriter{ResponseWriter: &bareWriter{}}).Flush()
}

func TestMetricsResponseWriter_HijackDelegation(t *testing.T) {
	var _ http.Hijacker = (*metricsResponseWriter)(nil)

	inner := &hijackRecorder{ResponseWriter: httptest.NewRecorder()}
	rw := &metricsResponseWriter{ResponseWriter: inner}
	_, _, err := rw.Hijack()
	require.NoError(t, err)
	assert.True(t, inner.hijacked)

	_, _, err = (&metricsResponseWriter{ResponseWriter: &bareWriter{}}).Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}
