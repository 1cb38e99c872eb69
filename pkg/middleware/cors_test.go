package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(t *testing.T, cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(method, "/api/v1/auth/login", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCORS_OriginHandling(t *testing.T) {
	prod := CORSConfig{
		AllowedOrigins: []string{"https://app.teamboard.io", "https://admin.teamboard.io"},
		Environment:    "production",
	}

	tests := []struct {
		name        string
		cfg         CORSConfig
		origin      string
		wantAllow   string
		wantVarying bool
	}{
		{
			name:      "development wildcard admits any origin",
			cfg:       CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"},
			origin:    "https://anywhere.example",
			wantAllow: "*",
		},
		{
			name:      "development wildcard without origin header",
			cfg:       CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"},
			wantAllow: "*",
		},
		{
			name:        "production allows listed origin",
			cfg:         prod,
			origin:      "https://app.teamboard.io",
			wantAllow:   "https://app.teamboard.io",
			wantVarying: true,
		},
		{
			name:        "production allows second listed origin",
			cfg:         prod,
			origin:      "https://admin.teamboard.io",
			wantAllow:   "https://admin.teamboard.io",
			wantVarying: true,
		},
		{
			name:   "production rejects unknown origin",
			cfg:    prod,
			origin: "https://evil.example",
		},
		{
			name: "production with no origin header",
			cfg:  prod,
		},
		{
			name: "explicit wildcard overrides production",
			cfg: CORSConfig{
				AllowedOrigins: []string{"https://app.teamboard.io", "*"},
				Environment:    "production",
			},
			origin:    "https://anywhere.example",
			wantAllow: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := corsRequest(t, tt.cfg, http.MethodGet, tt.origin)

			assert.Equal(t, http.StatusOK, rr.Code, "non-preflight requests pass through")
			assert.Equal(t, tt.wantAllow, rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantVarying {
				assert.Equal(t, "Origin", rr.Header().Get("Vary"))
			}
		})
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	rr := corsRequest(t, DefaultCORSConfig(), http.MethodOptions, "https://app.teamboard.io")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String(), "handler must not run for preflight")
}

func TestCORS_HeaderValues(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"https://app.teamboard.io"},
		AllowedHeaders:   []string{"Accept", "Authorization", "X-Custom"},
		ExposedHeaders:   []string{"X-Correlation-ID", "X-User-ID"},
		MaxAge:           7200,
		AllowCredentials: true,
		Environment:      "production",
	}
	rr := corsRequest(t, cfg, http.MethodGet, "https://app.teamboard.io")

	assert.Equal(t, "Accept, Authorization, X-Custom", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID, X-User-ID", rr.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "7200", rr.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_EmptyFieldsGetDefaults(t *testing.T) {
	rr := corsRequest(t, CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"}, http.MethodGet, "")

	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 3600, cfg.MaxAge)
	assert.False(t, cfg.AllowCredentials)
}
