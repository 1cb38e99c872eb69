package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrInvalidTokenType is returned by a TokenValidator when the token is
// structurally valid but carries the wrong type claim, such as a refresh
// token presented where an access token is expected. The guard reports it
// distinctly from expiry or forgery.
var ErrInvalidTokenType = errors.New("invalid token type")

type contextKeyType string

const (
	userIDKey contextKeyType = "user_id"
	emailKey  contextKeyType = "email"
	roleKey   contextKeyType = "role"
)

// AccessTokenCookie is the cookie consulted when no Authorization header is
// present. Browser clients authenticate through it; API clients use the header.
const AccessTokenCookie = "access_token"

// Claims represents the identity extracted by the auth middleware.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TokenValidator validates an access token and returns the caller's identity.
// The implementation is responsible for rejecting tokens of the wrong type
// (e.g. a refresh token presented where an access token is expected).
type TokenValidator func(token string) (*Claims, error)

// BearerToken extracts the access token from the request, preferring the
// Authorization header over the access_token cookie. Returns "" when neither
// is present.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// Auth validates the access token from the Authorization header or the
// access_token cookie and injects the caller's identity into the context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeAuthError(w, "access token required")
				return
			}

			claims, err := validate(token)
			if err != nil {
				if errors.Is(err, ErrInvalidTokenType) {
					writeAuthError(w, "invalid token type")
				} else {
					writeAuthError(w, "invalid or expired token")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims)))
		})
	}
}

// RequireRole checks that the authenticated user's role is in the allow-list.
// An empty list admits any authenticated user.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(roleSet) > 0 {
				role := RoleFromContext(r.Context())
				if _, ok := roleSet[role]; !ok {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusForbidden)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "FORBIDDEN",
						"message": "insufficient permissions",
					})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a context carrying the caller's identity.
func WithIdentity(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	ctx = context.WithValue(ctx, emailKey, claims.Email)
	return context.WithValue(ctx, roleKey, claims.Role)
}

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// EmailFromContext extracts the user email from the request context.
func EmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(emailKey).(string); ok {
		return email
	}
	return ""
}

// RoleFromContext extracts the user role from the request context.
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
