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

const taskColumns = `id, project_id, title, description, status, priority, assignee_id, due_date, created_at, updated_at`

// TaskRepository implements repository.TaskRepository using PostgreSQL.
type TaskRepository struct {
	db DB
}

// NewTaskRepository creates a new PostgreSQL-backed task repository.
func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task into the database.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		t.AssigneeID, t.DueDate, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1`

	var t domain.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssigneeID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	return &t, nil
}

// ListByProjectID returns the project's tasks newest first with a total count.
func (r *TaskRepository) ListByProjectID(ctx context.Context, projectID string, params pagination.Params) ([]domain.Task, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = $1`, projectID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, projectID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.AssigneeID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate task rows: %w", err)
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	return tasks, total, nil
}

// Update modifies an existing task in the database.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4,
		    assignee_id = $5, due_date = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.DueDate, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("task", t.ID)
	}

	return nil
}

// Delete removes a task from the database by its ID.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("task", id)
	}

	return nil
}
