package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamboardhq/teamboard/internal/auth"
	"github.com/teamboardhq/teamboard/internal/domain"
	"github.com/teamboardhq/teamboard/internal/event"
	"github.com/teamboardhq/teamboard/internal/repository"
	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AuthService implements the business logic for authentication operations.
type AuthService struct {
	userRepo    repository.UserRepository
	jwtManager  *auth.JWTManager
	producer    *event.Producer
	resetWindow time.Duration
	logger      *slog.Logger
}

// NewAuthService creates a new auth service. resetWindow is the server-side
// validity window stored alongside a password reset token; it is shorter than
// the signed token lifetime and is the one that counts.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	resetWindow time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtManager:  jwtManager,
		producer:    producer,
		resetWindow: resetWindow,
		logger:      logger,
	}
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// Login authenticates a user with email and password, returning tokens.
// Checks run in a fixed order: credentials first, then email verification,
// then profile completion, each with its own error code.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		// Burn a bcrypt comparison so unknown emails cost the same as bad passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$12$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva"), []byte(input.Password))
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		return nil, nil, ErrEmailNotVerified
	}

	if !user.ProfileComplete() {
		return nil, nil, ErrProfileIncomplete
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Refresh validates a refresh-typed token and issues a new token pair. Old
// refresh tokens are not invalidated; tokens are stateless and rotation is
// best effort.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.jwtManager.Validate(refreshToken, auth.TokenRefresh)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("user_id", user.ID),
	)

	return tokens, nil
}

// VerifyEmail marks an account verified using a verification-typed token.
// The presented token must equal the one currently stored on the account so
// a superseded invite link cannot be replayed. The stored token is left in
// place after use; completing the profile clears it.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	// An empty token is just another token that fails verification; the
	// caller cannot tell a missing link apart from a forged one.
	claims, err := s.jwtManager.Validate(token, auth.TokenVerification)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if user.EmailVerificationToken != token {
		return nil, ErrInvalidToken
	}

	user.IsEmailVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("mark email verified: %w", err)
	}

	if err := s.producer.PublishUserVerified(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.verified event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "email verified",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// ResendVerification mints a fresh verification token for an unverified
// account and publishes a mail event carrying it.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.Conflict("user not found")
	}

	if user.IsEmailVerified {
		return apperrors.Conflict("email is already verified")
	}

	token, err := s.jwtManager.Generate(auth.TokenVerification, user.ID, user.Email, user.Role)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}

	user.EmailVerificationToken = token
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	if err := s.producer.PublishVerificationResent(ctx, user, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.verification-resent event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "verification email resent",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// ForgotPassword initiates a password reset. It never reveals whether the
// email exists; the handler returns the same message either way. For known
// accounts it stores a reset token plus a server-side expiry and publishes
// a mail event. Mail failures never fail the request.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.InfoContext(ctx, "password reset requested for unknown email",
			slog.String("email", email),
		)
		return nil
	}

	token, err := s.jwtManager.Generate(auth.TokenReset, user.ID, user.Email, user.Role)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expires := time.Now().UTC().Add(s.resetWindow)
	user.PasswordResetToken = token
	user.PasswordResetExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.producer.PublishPasswordResetRequested(ctx, user, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password-reset-requested event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// ResetPassword sets a new password using a reset-typed token. The token
// must match the one stored on the account and the stored expiry must be in
// the future; the stored expiry is deliberately shorter than the signed one,
// and a password change or token-clear revokes a still-valid JWT.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.InvalidInput("reset token is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	claims, err := s.jwtManager.Validate(token, auth.TokenReset)
	if err != nil {
		return ErrInvalidOrExpiredToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return ErrInvalidOrExpiredToken
	}

	if user.PasswordResetToken != token {
		return ErrInvalidOrExpiredToken
	}
	if user.PasswordResetExpires == nil || user.PasswordResetExpires.Before(time.Now().UTC()) {
		return ErrInvalidOrExpiredToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("user_id", user.ID),
	)

	return nil
}

// ChangePassword allows an authenticated user to change their password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return apperrors.InvalidInput("current password is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return apperrors.InvalidInput("new password must be different from current password")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for password change: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.Unauthorized("current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", user.ID),
	)

	return nil
}

// CurrentUser loads the account for an authenticated identity. A valid
// token whose account has since been deleted fails with ACCOUNT_NOT_FOUND.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	return user, nil
}

// generateTokenPair creates an access/refresh token pair for the user.
func (s *AuthService) generateTokenPair(user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.Generate(auth.TokenAccess, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.Generate(auth.TokenRefresh, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// validatePassword checks that the password meets minimum complexity requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
