package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/teamboardhq/teamboard/internal/domain"
	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
	"github.com/teamboardhq/teamboard/pkg/pagination"
)

// ProjectRepository implements repository.ProjectRepository using PostgreSQL.
type ProjectRepository struct {
	db DB
}

// NewProjectRepository creates a new PostgreSQL-backed project repository.
func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project into the database.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	query := `
		INSERT INTO projects (id, team_id, name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.TeamID, p.Name, p.Description, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by its ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT id, team_id, name, description, status, created_at, updated_at
		FROM projects
		WHERE id = $1`

	var p domain.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.TeamID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}

	return &p, nil
}

// ListByTeamID returns the team's projects newest first with a total count.
func (r *ProjectRepository) ListByTeamID(ctx context.Context, teamID string, params pagination.Params) ([]domain.Project, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE team_id = $1`, teamID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	query := `
		SELECT id, team_id, name, description, status, created_at, updated_at
		FROM projects
		WHERE team_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, teamID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate project rows: %w", err)
	}

	if projects == nil {
		projects = []domain.Project{}
	}

	return projects, total, nil
}

// Update modifies an existing project in the database.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE projects
		SET name = $1, description = $2, status = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.db.Exec(ctx, query, p.Name, p.Description, p.Status, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("project", p.ID)
	}

	return nil
}

// Delete removes a project; its tasks cascade via the foreign key.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("project", id)
	}

	return nil
}
