package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teamboardhq/teamboard/internal/domain"
	"github.com/teamboardhq/teamboard/internal/repository"
	"github.com/teamboardhq/teamboard/pkg/pagination"
)

// NotificationService implements the business logic for in-app notifications.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notificationRepo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, params pagination.Params) (*pagination.Result[domain.Notification], error) {
	notifications, total, err := s.notificationRepo.ListByUserID(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	result := pagination.NewResult(notifications, total, params)
	return &result, nil
}

// MarkRead marks a single notification as read. Notifications belonging to
// other users are indistinguishable from missing ones.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.notificationRepo.MarkRead(ctx, userID, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	s.logger.DebugContext(ctx, "notification marked read",
		slog.String("user_id", userID),
		slog.String("notification_id", notificationID),
	)

	return nil
}

// MarkAllRead marks every unread notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	s.logger.DebugContext(ctx, "all notifications marked read",
		slog.String("user_id", userID),
	)

	return nil
}
