package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamboardhq/teamboard/internal/auth"
	"github.com/teamboardhq/teamboard/internal/domain"
	"github.com/teamboardhq/teamboard/internal/event"
	"github.com/teamboardhq/teamboard/internal/repository"
	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
	"github.com/teamboardhq/teamboard/pkg/pagination"
)

// UserService implements the business logic for user management operations.
type UserService struct {
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	producer   *event.Producer
	logger     *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		producer:   producer,
		logger:     logger,
	}
}

// InviteInput holds the parameters for inviting a new user.
type InviteInput struct {
	Email string
	Role  string
}

// CompleteProfileInput holds the parameters for completing an invited
// user's profile.
type CompleteProfileInput struct {
	Token     string
	FirstName string
	LastName  string
	Password  string
}

// Invite creates an unverified account with a role and publishes a mail
// event carrying the verification token. Re-inviting an unverified account
// refreshes its token; inviting a verified account is a conflict.
func (s *UserService) Invite(ctx context.Context, input InviteInput) (*domain.User, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Role == "" {
		return nil, apperrors.InvalidInput("role is required")
	}
	if !domain.IsValidRole(input.Role) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid role %q", input.Role))
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		if existing.IsEmailVerified {
			return nil, apperrors.AlreadyExists("user", "email", input.Email)
		}

		// Unverified account: refresh the invite token and resend.
		token, err := s.jwtManager.Generate(auth.TokenVerification, existing.ID, existing.Email, existing.Role)
		if err != nil {
			return nil, fmt.Errorf("generate verification token: %w", err)
		}

		existing.EmailVerificationToken = token
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("store verification token: %w", err)
		}

		s.publishInvited(ctx, existing, token)

		s.logger.InfoContext(ctx, "unverified user re-invited",
			slog.String("user_id", existing.ID),
			slog.String("email", existing.Email),
		)

		return existing, nil
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Role:      input.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	token, err := s.jwtManager.Generate(auth.TokenVerification, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}
	user.EmailVerificationToken = token

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create invited user: %w", err)
	}

	s.publishInvited(ctx, user, token)

	s.logger.InfoContext(ctx, "user invited",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("role", user.Role),
	)

	return user, nil
}

// CompleteProfile finishes onboarding for a verified invitee: it sets the
// name and password using the verification token as proof of ownership,
// then clears the stored token. Already completed profiles are rejected.
func (s *UserService) CompleteProfile(ctx context.Context, input CompleteProfileInput) (*domain.User, error) {
	if input.Token == "" {
		return nil, apperrors.InvalidInput("token is required")
	}
	if input.FirstName == "" {
		return nil, apperrors.InvalidInput("first name is required")
	}
	if input.LastName == "" {
		return nil, apperrors.InvalidInput("last name is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	claims, err := s.jwtManager.Validate(input.Token, auth.TokenVerification)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, apperrors.Unauthorized("user not found or not verified")
	}
	if !user.IsEmailVerified {
		return nil, apperrors.Unauthorized("user not found or not verified")
	}
	if user.ProfileComplete() {
		return nil, apperrors.InvalidInput("profile already completed")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.PasswordHash = string(hashedPassword)
	user.EmailVerificationToken = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("complete profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile completed",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// List returns users matching the filter with pagination.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter, params pagination.Params) (*pagination.Result[domain.User], error) {
	if filter.Role != "" && !domain.IsValidRole(filter.Role) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid role %q", filter.Role))
	}

	users, total, err := s.userRepo.List(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	result := pagination.NewResult(users, total, params)
	return &result, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateRole changes a user's role.
func (s *UserService) UpdateRole(ctx context.Context, id, role string) (*domain.User, error) {
	if !domain.IsValidRole(role) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid role %q", role))
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user for role update: %w", err)
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}

	s.logger.InfoContext(ctx, "user role updated",
		slog.String("user_id", user.ID),
		slog.String("role", role),
	)

	return user, nil
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id),
	)

	return nil
}

func (s *UserService) publishInvited(ctx context.Context, user *domain.User, token string) {
	if err := s.producer.PublishUserInvited(ctx, user, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.invited event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
}
