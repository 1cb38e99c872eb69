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

// ProjectService implements the business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	teamRepo    repository.TeamRepository
	logger      *slog.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	teamRepo repository.TeamRepository,
	logger *slog.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		logger:      logger,
	}
}

// CreateProjectInput holds the parameters for creating a project.
type CreateProjectInput struct {
	TeamID      string
	Name        string
	Description string
}

// UpdateProjectInput holds the parameters for updating a project.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *string
}

// Create creates a new project under an existing team.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*domain.Project, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("project name is required")
	}
	if input.TeamID == "" {
		return nil, apperrors.InvalidInput("team id is required")
	}

	if _, err := s.teamRepo.GetByID(ctx, input.TeamID); err != nil {
		return nil, fmt.Errorf("get team for project: %w", err)
	}

	now := time.Now().UTC()
	project := &domain.Project{
		ID:          uuid.New().String(),
		TeamID:      input.TeamID,
		Name:        input.Name,
		Description: input.Description,
		Status:      domain.ProjectStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.InfoContext(ctx, "project created",
		slog.String("project_id", project.ID),
		slog.String("team_id", project.TeamID),
	)

	return project, nil
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// ListByTeam returns a team's projects with pagination.
func (s *ProjectService) ListByTeam(ctx context.Context, teamID string, params pagination.Params) (*pagination.Result[domain.Project], error) {
	projects, total, err := s.projectRepo.ListByTeamID(ctx, teamID, params)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	result := pagination.NewResult(projects, total, params)
	return &result, nil
}

// Update modifies a project's name, description or status.
func (s *ProjectService) Update(ctx context.Context, id string, input UpdateProjectInput) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("project name must not be empty")
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !domain.IsValidProjectStatus(*input.Status) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid project status %q", *input.Status))
		}
		project.Status = *input.Status
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.logger.InfoContext(ctx, "project updated",
		slog.String("project_id", project.ID),
	)

	return project, nil
}

// Delete removes a project and, via cascading, its tasks.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	s.logger.InfoContext(ctx, "project deleted",
		slog.String("project_id", id),
	)

	return nil
}
