package service

import (
	"net/http"

	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
)

// Authentication and account lifecycle errors. Codes are part of the API
// contract; clients branch on them, so they stay stable. INVALID_CREDENTIALS
// deliberately covers both unknown email and wrong password, and forgot
// password never reveals whether an account exists.
var (
	ErrInvalidCredentials = apperrors.New(
		"INVALID_CREDENTIALS",
		"invalid email or password",
		http.StatusUnauthorized,
		apperrors.ErrUnauthorized,
	)

	ErrEmailNotVerified = apperrors.New(
		"EMAIL_NOT_VERIFIED",
		"email address has not been verified",
		http.StatusForbidden,
		apperrors.ErrForbidden,
	)

	ErrProfileIncomplete = apperrors.New(
		"PROFILE_INCOMPLETE",
		"profile has not been completed",
		http.StatusForbidden,
		apperrors.ErrForbidden,
	)

	ErrInvalidToken = apperrors.New(
		"INVALID_TOKEN",
		"invalid token",
		http.StatusUnauthorized,
		apperrors.ErrUnauthorized,
	)

	ErrTokenExpired = apperrors.New(
		"TOKEN_EXPIRED",
		"token has expired",
		http.StatusUnauthorized,
		apperrors.ErrUnauthorized,
	)

	ErrAccountNotFound = apperrors.New(
		"ACCOUNT_NOT_FOUND",
		"account no longer exists",
		http.StatusUnauthorized,
		apperrors.ErrUnauthorized,
	)

	ErrInvalidOrExpiredToken = apperrors.New(
		"INVALID_OR_EXPIRED_TOKEN",
		"invalid or expired token",
		http.StatusUnauthorized,
		apperrors.ErrUnauthorized,
	)
)
