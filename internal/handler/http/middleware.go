package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/teamboardhq/teamboard/internal/auth"
	"github.com/teamboardhq/teamboard/internal/domain"
	"github.com/teamboardhq/teamboard/pkg/middleware"
)

// RefreshTokenCookie holds the refresh token for browser sessions. The
// matching access token cookie name lives in pkg/middleware.
const RefreshTokenCookie = "refresh_token"

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CookieConfig controls how session cookies are written. Production uses
// Secure + SameSite=None so a separately hosted frontend can send them;
// everything else uses Lax so plain-HTTP development works.
type CookieConfig struct {
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

func (c CookieConfig) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// setAuthCookies writes the access and refresh token cookies.
func setAuthCookies(w http.ResponseWriter, cfg CookieConfig, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(cfg.AccessMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.sameSite(),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(cfg.RefreshMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.sameSite(),
	})
}

// clearAuthCookies expires both session cookies.
func clearAuthCookies(w http.ResponseWriter, cfg CookieConfig) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: cfg.sameSite(),
		})
	}
}

// TokenRefresher rotates a refresh token into a fresh access/refresh pair.
// It is satisfied by AuthService.Refresh.
type TokenRefresher func(ctx context.Context, refreshToken string) (*domain.TokenPair, error)

// AutoRefresh authenticates like the strict guard but, when the access
// token is expired and a refresh_token cookie is present, transparently
// rotates the pair, rewrites both cookies and lets the request continue.
// Any other token failure clears the cookies and rejects without a refresh
// attempt, so forged or wrong-typed tokens can never trigger rotation.
func AutoRefresh(jwtManager *auth.JWTManager, refresh TokenRefresher, cookies CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := middleware.BearerToken(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "access token required"},
				})
				return
			}

			claims, err := jwtManager.Validate(token, auth.TokenAccess)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), &middleware.Claims{
					UserID: claims.UserID,
					Email:  claims.Email,
					Role:   claims.Role,
				})))
				return
			}

			if !errors.Is(err, jwt.ErrTokenExpired) {
				message := "invalid or expired token"
				if errors.Is(err, auth.ErrWrongTokenType) {
					message = "invalid token type"
				}
				clearAuthCookies(w, cookies)
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: message},
				})
				return
			}

			cookie, cookieErr := r.Cookie(RefreshTokenCookie)
			if cookieErr != nil || cookie.Value == "" {
				clearAuthCookies(w, cookies)
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "session expired"},
				})
				return
			}

			tokens, refreshErr := refresh(r.Context(), cookie.Value)
			if refreshErr != nil {
				clearAuthCookies(w, cookies)
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "session expired"},
				})
				return
			}

			newClaims, err := jwtManager.Validate(tokens.AccessToken, auth.TokenAccess)
			if err != nil {
				clearAuthCookies(w, cookies)
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "session expired"},
				})
				return
			}

			setAuthCookies(w, cookies, tokens.AccessToken, tokens.RefreshToken)

			next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), &middleware.Claims{
				UserID: newClaims.UserID,
				Email:  newClaims.Email,
				Role:   newClaims.Role,
			})))
		})
	}
}

// AccessTokenValidator adapts the JWT manager to the shared auth
// middleware's validator contract, enforcing type == access.
func AccessTokenValidator(jwtManager *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.Validate(token, auth.TokenAccess)
		if err != nil {
			if errors.Is(err, auth.ErrWrongTokenType) {
				return nil, fmt.Errorf("%w: %w", middleware.ErrInvalidTokenType, err)
			}
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}
}
