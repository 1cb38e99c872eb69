package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teamboardhq/teamboard/internal/domain"
	pkgkafka "github.com/teamboardhq/teamboard/pkg/kafka"
)

// Kafka topic constants for TeamBoard domain events. The mail worker
// consumes the user.* topics to deliver email.
const (
	TopicUserInvited            = "teamboard.user.invited"
	TopicVerificationResent     = "teamboard.user.verification-resent"
	TopicUserVerified           = "teamboard.user.verified"
	TopicPasswordResetRequested = "teamboard.user.password-reset-requested"
	TopicTaskAssigned           = "teamboard.task.assigned"
)

// Aggregate type constants.
const (
	AggregateTypeUser = "user"
	AggregateTypeTask = "task"
)

// Source identifier for events originating from this server.
const SourceServer = "teamboard-server"

// UserInvitedData is the payload for a user.invited event. Token is the
// signed verification token the mail worker embeds in the invite link.
type UserInvitedData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

// VerificationResentData is the payload for a user.verification-resent event.
type VerificationResentData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// UserVerifiedData is the payload for a user.verified event.
type UserVerifiedData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// PasswordResetRequestedData is the payload for a user.password-reset-requested event.
type PasswordResetRequestedData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// TaskAssignedData is the payload for a task.assigned event.
type TaskAssignedData struct {
	TaskID     string `json:"task_id"`
	ProjectID  string `json:"project_id"`
	Title      string `json:"title"`
	AssigneeID string `json:"assignee_id"`
}

// Producer publishes TeamBoard domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserInvited publishes a user.invited event carrying the verification token.
func (p *Producer) PublishUserInvited(ctx context.Context, user *domain.User, token string) error {
	data := UserInvitedData{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Token:  token,
	}
	return p.publish(ctx, TopicUserInvited, user.ID, AggregateTypeUser, data)
}

// PublishVerificationResent publishes a user.verification-resent event.
func (p *Producer) PublishVerificationResent(ctx context.Context, user *domain.User, token string) error {
	data := VerificationResentData{
		UserID: user.ID,
		Email:  user.Email,
		Token:  token,
	}
	return p.publish(ctx, TopicVerificationResent, user.ID, AggregateTypeUser, data)
}

// PublishUserVerified publishes a user.verified event.
func (p *Producer) PublishUserVerified(ctx context.Context, user *domain.User) error {
	data := UserVerifiedData{
		UserID: user.ID,
		Email:  user.Email,
	}
	return p.publish(ctx, TopicUserVerified, user.ID, AggregateTypeUser, data)
}

// PublishPasswordResetRequested publishes a user.password-reset-requested event.
func (p *Producer) PublishPasswordResetRequested(ctx context.Context, user *domain.User, token string) error {
	data := PasswordResetRequestedData{
		UserID: user.ID,
		Email:  user.Email,
		Token:  token,
	}
	return p.publish(ctx, TopicPasswordResetRequested, user.ID, AggregateTypeUser, data)
}

// PublishTaskAssigned publishes a task.assigned event.
func (p *Producer) PublishTaskAssigned(ctx context.Context, task *domain.Task) error {
	data := TaskAssignedData{
		TaskID:     task.ID,
		ProjectID:  task.ProjectID,
		Title:      task.Title,
		AssigneeID: task.AssigneeID,
	}
	return p.publish(ctx, TopicTaskAssigned, task.ID, AggregateTypeTask, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceServer, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
