package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType discriminates the four kinds of tokens the service issues. Every
// consumer states which type it expects; a mismatch is always a validation
// failure, so a refresh token can never pass where an access token is required.
type TokenType string

const (
	TokenAccess       TokenType = "access"
	TokenRefresh      TokenType = "refresh"
	TokenVerification TokenType = "verification"
	TokenReset        TokenType = "reset"
)

// ErrWrongTokenType is returned when a structurally valid token carries a
// type claim other than the one the caller expects.
var ErrWrongTokenType = errors.New("wrong token type")

// Claims represents the JWT claims carried by every TeamBoard token.
type Claims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

// JWTManager handles token generation and validation for all four token types.
type JWTManager struct {
	secret             []byte
	accessExpiry       time.Duration
	refreshExpiry      time.Duration
	verificationExpiry time.Duration
	resetExpiry        time.Duration
}

// NewJWTManager creates a JWT manager with per-type expiry durations.
func NewJWTManager(secret string, accessExpiry, refreshExpiry, verificationExpiry, resetExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:             []byte(secret),
		accessExpiry:       accessExpiry,
		refreshExpiry:      refreshExpiry,
		verificationExpiry: verificationExpiry,
		resetExpiry:        resetExpiry,
	}
}

// Generate creates a signed token of the given type for the user.
func (m *JWTManager) Generate(typ TokenType, userID, email, role string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes every issued token distinct even when two share
			// claims and a second-granularity iat, so rotation always
			// produces a new token string.
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiryFor(typ))),
			Issuer:    "teamboard-server",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}

	return signedToken, nil
}

// Validate parses the token, verifies its signature and expiry, and checks
// that its type claim matches want. Expired tokens surface
// jwt.ErrTokenExpired through the error chain so callers can distinguish
// expiry from malformed or forged tokens.
func (m *JWTManager) Validate(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s token: %w", want, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid %s token claims", want)
	}

	if claims.TokenType != want {
		return nil, fmt.Errorf("expected %s token, got %s: %w", want, claims.TokenType, ErrWrongTokenType)
	}

	return claims, nil
}

func (m *JWTManager) expiryFor(typ TokenType) time.Duration {
	switch typ {
	case TokenRefresh:
		return m.refreshExpiry
	case TokenVerification:
		return m.verificationExpiry
	case TokenReset:
		return m.resetExpiry
	default:
		return m.accessExpiry
	}
}
