package repository

import (
	"context"

	"github.com/teamboardhq/teamboard/internal/domain"
	"github.com/teamboardhq/teamboard/pkg/pagination"
)

// UserFilter narrows user listing queries.
type UserFilter struct {
	Role     string
	Verified *bool
	Search   string
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users matching the filter, newest first.
	List(ctx context.Context, filter UserFilter, params pagination.Params) ([]domain.User, int, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error
}

// TeamRepository defines the interface for team persistence operations.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context, params pagination.Params) ([]domain.Team, int, error)
	Update(ctx context.Context, team *domain.Team) error
	Delete(ctx context.Context, id string) error

	// AddMember adds a user to the team; adding an existing member is a no-op.
	AddMember(ctx context.Context, teamID, userID string) error

	// RemoveMember removes a user from the team.
	RemoveMember(ctx context.Context, teamID, userID string) error
}

// ProjectRepository defines the interface for project persistence operations.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByTeamID(ctx context.Context, teamID string, params pagination.Params) ([]domain.Project, int, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error
}

// TaskRepository defines the interface for task persistence operations.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByProjectID(ctx context.Context, projectID string, params pagination.Params) ([]domain.Task, int, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// NotificationRepository defines the interface for notification persistence operations.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByUserID(ctx context.Context, userID string, params pagination.Params) ([]domain.Notification, int, error)

	// MarkRead marks a single notification as read; it fails if the
	// notification does not belong to the user.
	MarkRead(ctx context.Context, userID, notificationID string) error

	// MarkAllRead marks every unread notification for the user as read.
	MarkAllRead(ctx context.Context, userID string) error
}
