package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teamboardhq/teamboard/internal/domain"
	"github.com/teamboardhq/teamboard/internal/repository"
	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
	"github.com/teamboardhq/teamboard/pkg/pagination"
)

// TeamService implements the business logic for team operations.
type TeamService struct {
	teamRepo         repository.TeamRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

// NewTeamService creates a new team service.
func NewTeamService(
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	logger *slog.Logger,
) *TeamService {
	return &TeamService{
		teamRepo:         teamRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// CreateTeamInput holds the parameters for creating a team.
type CreateTeamInput struct {
	Name        string
	Description string
}

// UpdateTeamInput holds the parameters for updating a team.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// Create creates a new team owned by the given user. The owner is also
// recorded as a member.
func (s *TeamService) Create(ctx context.Context, ownerID string, input CreateTeamInput) (*domain.Team, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("team name is required")
	}

	now := time.Now().UTC()
	team := &domain.Team{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     ownerID,
		MemberIDs:   []string{ownerID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	s.logger.InfoContext(ctx, "team created",
		slog.String("team_id", team.ID),
		slog.String("owner_id", ownerID),
	)

	return team, nil
}

// Get retrieves a team by ID, including its member list.
func (s *TeamService) Get(ctx context.Context, id string) (*domain.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

// List returns teams with pagination.
func (s *TeamService) List(ctx context.Context, params pagination.Params) (*pagination.Result[domain.Team], error) {
	teams, total, err := s.teamRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	result := pagination.NewResult(teams, total, params)
	return &result, nil
}

// Update modifies a team's name or description.
func (s *TeamService) Update(ctx context.Context, id string, input UpdateTeamInput) (*domain.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get team for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("team name must not be empty")
		}
		team.Name = *input.Name
	}
	if input.Description != nil {
		team.Description = *input.Description
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}

	s.logger.InfoContext(ctx, "team updated",
		slog.String("team_id", team.ID),
	)

	return team, nil
}

// Delete removes a team and, via cascading, its projects and tasks.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	s.logger.InfoContext(ctx, "team deleted",
		slog.String("team_id", id),
	)

	return nil
}

// AddMember adds a user to a team and leaves them an in-app notification.
// Adding an existing member is a no-op.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID string) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("get team for member add: %w", err)
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return fmt.Errorf("get user for member add: %w", err)
	}

	if team.IsMember(userID) {
		return nil
	}

	if err := s.teamRepo.AddMember(ctx, teamID, userID); err != nil {
		return fmt.Errorf("add team member: %w", err)
	}

	notification := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      domain.NotificationTeamAdded,
		Title:     "Added to team",
		Body:      fmt.Sprintf("You have been added to the team %q.", team.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.ErrorContext(ctx, "failed to create team-added notification",
			slog.String("team_id", teamID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "team member added",
		slog.String("team_id", teamID),
		slog.String("user_id", userID),
	)

	return nil
}

// RemoveMember removes a user from a team. The owner cannot be removed.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("get team for member removal: %w", err)
	}

	if team.OwnerID == userID {
		return apperrors.InvalidInput("team owner cannot be removed from the team")
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}

	s.logger.InfoContext(ctx, "team member removed",
		slog.String("team_id", teamID),
		slog.String("user_id", userID),
	)

	return nil
}
