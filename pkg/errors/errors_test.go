package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	plain := &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "account not found"}
	assert.Equal(t, "ACCOUNT_NOT_FOUND: account not found", plain.Error())

	wrapped := &AppError{Code: "INTERNAL_ERROR", Message: "login failed", Err: errors.New("pool exhausted")}
	assert.Equal(t, "INTERNAL_ERROR: login failed: pool exhausted", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	withSentinel := &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "gone", Err: ErrNotFound}
	assert.ErrorIs(t, withSentinel, ErrNotFound)

	bare := &AppError{Code: "X", Message: "y"}
	assert.Nil(t, bare.Unwrap())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
		wantIs     error
		wantInMsg  []string
	}{
		{
			name:       "NotFound interpolates resource and id",
			err:        NotFound("user", "u-42"),
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
			wantIs:     ErrNotFound,
			wantInMsg:  []string{"user", "u-42"},
		},
		{
			name:       "AlreadyExists names the colliding field",
			err:        AlreadyExists("user", "email", "dev@teamboard.io"),
			wantCode:   "ALREADY_EXISTS",
			wantStatus: http.StatusConflict,
			wantIs:     ErrAlreadyExists,
			wantInMsg:  []string{"email", "dev@teamboard.io"},
		},
		{
			name:       "InvalidInput",
			err:        InvalidInput("password must be at least 8 characters"),
			wantCode:   "INVALID_INPUT",
			wantStatus: http.StatusBadRequest,
			wantIs:     ErrInvalidInput,
		},
		{
			name:       "Unauthorized",
			err:        Unauthorized("invalid or expired token"),
			wantCode:   "UNAUTHORIZED",
			wantStatus: http.StatusUnauthorized,
			wantIs:     ErrUnauthorized,
		},
		{
			name:       "Forbidden",
			err:        Forbidden("insufficient permissions"),
			wantCode:   "FORBIDDEN",
			wantStatus: http.StatusForbidden,
			wantIs:     ErrForbidden,
		},
		{
			name:       "Conflict",
			err:        Conflict("profile already completed"),
			wantCode:   "CONFLICT",
			wantStatus: http.StatusConflict,
			wantIs:     ErrConflict,
		},
		{
			name:       "Gone",
			err:        Gone("invite link no longer valid"),
			wantCode:   "GONE",
			wantStatus: http.StatusGone,
			wantIs:     ErrGone,
		},
		{
			name:       "New allows domain-specific codes",
			err:        New("EMAIL_NOT_VERIFIED", "email address is not verified", http.StatusForbidden, ErrForbidden),
			wantCode:   "EMAIL_NOT_VERIFIED",
			wantStatus: http.StatusForbidden,
			wantIs:     ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.wantIs)
			for _, fragment := range tt.wantInMsg {
				assert.Contains(t, tt.err.Message, fragment)
			}
		})
	}
}

func TestInternal_HidesCauseFromMessage(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := Internal(cause)

	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.NotContains(t, err.Message, "pq:", "client-facing message must not leak internals")
	assert.ErrorIs(t, err, cause)
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "load account")

	assert.Contains(t, wrapped.Error(), "load account")
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"AppError carries its own status", New("TOKEN_EXPIRED", "token expired", http.StatusUnauthorized, ErrUnauthorized), http.StatusUnauthorized},
		{"bare ErrNotFound", ErrNotFound, http.StatusNotFound},
		{"bare ErrAlreadyExists", ErrAlreadyExists, http.StatusConflict},
		{"bare ErrConflict", ErrConflict, http.StatusConflict},
		{"bare ErrInvalidInput", ErrInvalidInput, http.StatusBadRequest},
		{"bare ErrUnauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"bare ErrForbidden", ErrForbidden, http.StatusForbidden},
		{"bare ErrGone", ErrGone, http.StatusGone},
		{"bare ErrServiceUnavail", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"wrapped sentinel still maps", fmt.Errorf("refresh: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"unknown error defaults to 500", errors.New("surprise"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
