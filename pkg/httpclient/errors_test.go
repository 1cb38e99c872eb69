package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
)

func downstreamResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func envelope(code, message string) string {
	return `{"error":{"code":"` + code + `","message":"` + message + `"}}`
}

func TestParseResponseError_MappedStatuses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantIs     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "404 stays not-found",
			status:     http.StatusNotFound,
			body:       envelope("NOT_FOUND", "template not found"),
			wantIs:     apperrors.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "400 stays invalid input",
			status:     http.StatusBadRequest,
			body:       envelope("INVALID_INPUT", "missing recipient"),
			wantIs:     apperrors.ErrInvalidInput,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "401 stays unauthorized",
			status:     http.StatusUnauthorized,
			body:       envelope("UNAUTHORIZED", "bad API key"),
			wantIs:     apperrors.ErrUnauthorized,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "403 stays forbidden",
			status:     http.StatusForbidden,
			body:       envelope("FORBIDDEN", "sending domain not verified"),
			wantIs:     apperrors.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "409 stays conflict",
			status:     http.StatusConflict,
			body:       envelope("CONFLICT", "duplicate message id"),
			wantIs:     apperrors.ErrConflict,
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:       "410 stays gone",
			status:     http.StatusGone,
			body:       envelope("GONE", "suppression entry expired"),
			wantIs:     apperrors.ErrGone,
			wantStatus: http.StatusGone,
			wantCode:   "GONE",
		},
		{
			name:       "503 keeps the downstream code",
			status:     http.StatusServiceUnavailable,
			body:       envelope("SERVICE_UNAVAILABLE", "provider overloaded"),
			wantIs:     apperrors.ErrServiceUnavail,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name:       "unmapped 4xx preserves status and code",
			status:     http.StatusTooManyRequests,
			body:       envelope("RATE_LIMITED", "slow down"),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMITED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(downstreamResponse(tt.status, tt.body), "mail-provider")
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantStatus, appErr.Status)
			assert.Equal(t, tt.wantCode, appErr.Code)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestParseResponseError_ServerErrorsStayGeneric(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway} {
		err := ParseResponseError(downstreamResponse(status, envelope("INTERNAL_ERROR", "boom")), "mail-provider")
		require.Error(t, err)

		var appErr *apperrors.AppError
		assert.False(t, errors.As(err, &appErr), "5xx from downstream is our dependency's fault, not an AppError")
		assert.Contains(t, err.Error(), "mail-provider")
	}
}

func TestParseResponseError_UnstructuredBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"plain text", "Bad Gateway: upstream connection refused"},
		{"html error page", "<html><body><h1>502 Bad Gateway</h1></body></html>"},
		{"empty body", ""},
		{"json with null error", `{"error":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(downstreamResponse(http.StatusBadGateway, tt.body), "mail-provider")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "mail-provider")
			assert.Contains(t, err.Error(), "502")
		})
	}
}

func TestIsClientError(t *testing.T) {
	for _, status := range []int{400, 401, 404, 422, 429, 499} {
		assert.True(t, IsClientError(status), "status %d", status)
	}
	for _, status := range []int{200, 204, 302, 399, 500, 503} {
		assert.False(t, IsClientError(status), "status %d", status)
	}
}
