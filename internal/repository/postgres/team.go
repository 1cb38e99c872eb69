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

// TeamRepository implements repository.TeamRepository using PostgreSQL.
// Membership lives in the team_members join table.
type TeamRepository struct {
	db DB
}

// NewTeamRepository creates a new PostgreSQL-backed team repository.
func NewTeamRepository(db DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create inserts a new team and registers the owner as its first member.
func (r *TeamRepository) Create(ctx context.Context, t *domain.Team) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO teams (id, name, description, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Name, t.Description, t.OwnerID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("team", "name", t.Name)
		}
		return fmt.Errorf("insert team: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		t.ID, t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("insert team owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a team by its ID, including its member list.
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM teams
		WHERE id = $1`

	var t domain.Team
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Description, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan team: %w", err)
	}

	members, err := r.memberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	t.MemberIDs = members

	return &t, nil
}

// List returns teams newest first with a total count. Member lists are not
// populated here; GetByID loads them for a single team.
func (r *TeamRepository) List(ctx context.Context, params pagination.Params) ([]domain.Team, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count teams: %w", err)
	}

	query := `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM teams
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate team rows: %w", err)
	}

	if teams == nil {
		teams = []domain.Team{}
	}

	return teams, total, nil
}

// Update modifies an existing team in the database.
func (r *TeamRepository) Update(ctx context.Context, t *domain.Team) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE teams
		SET name = $1, description = $2, owner_id = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.db.Exec(ctx, query, t.Name, t.Description, t.OwnerID, t.UpdatedAt, t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("team", "name", t.Name)
		}
		return fmt.Errorf("update team: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("team", t.ID)
	}

	return nil
}

// Delete removes a team; memberships cascade via the foreign key.
func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("team", id)
	}

	return nil
}

// AddMember adds a user to the team; adding an existing member is a no-op.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		teamID, userID,
	)
	if err != nil {
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from the team.
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	ct, err := r.db.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("team member", userID)
	}

	return nil
}

func (r *TeamRepository) memberIDs(ctx context.Context, teamID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM team_members WHERE team_id = $1 ORDER BY user_id`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan team member row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team member rows: %w", err)
	}

	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}
