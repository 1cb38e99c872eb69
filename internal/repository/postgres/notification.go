package postgres

import (
	"context"
	"fmt"

	"github.com/teamboardhq/teamboard/internal/domain"
	apperrors "github.com/teamboardhq/teamboard/pkg/errors"
	"github.com/teamboardhq/teamboard/pkg/pagination"
)

// NotificationRepository implements repository.NotificationRepository using PostgreSQL.
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification into the database.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Body, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// ListByUserID returns the user's notifications newest first with a total count.
func (r *NotificationRepository) ListByUserID(ctx context.Context, userID string, params pagination.Params) ([]domain.Notification, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `
		SELECT id, user_id, type, title, body, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notification rows: %w", err)
	}

	if notifications == nil {
		notifications = []domain.Notification{}
	}

	return notifications, total, nil
}

// MarkRead marks a single notification as read for the given user.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	query := `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`

	ct, err := r.db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("notification", notificationID)
	}

	return nil
}

// MarkAllRead marks every unread notification for the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	return nil
}
