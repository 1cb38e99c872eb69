// Package mailworker consumes account lifecycle events from Kafka and
// delivers the corresponding email. It runs as its own binary so mail
// provider outages never back-pressure the API server.
package mailworker

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/teamboardhq/teamboard/internal/event"
	"github.com/teamboardhq/teamboard/internal/mailer"
	pkgkafka "github.com/teamboardhq/teamboard/pkg/kafka"
)

// Topics returns the Kafka topics the mail worker subscribes to.
func Topics() []string {
	return []string{
		event.TopicUserInvited,
		event.TopicVerificationResent,
		event.TopicPasswordResetRequested,
	}
}

// Worker turns account lifecycle events into outbound email.
type Worker struct {
	mailer          mailer.Mailer
	frontendBaseURL string
	logger          *slog.Logger
}

// NewWorker creates a mail worker. frontendBaseURL is the base for the
// verification and reset links embedded in messages.
func NewWorker(m mailer.Mailer, frontendBaseURL string, logger *slog.Logger) *Worker {
	return &Worker{
		mailer:          m,
		frontendBaseURL: frontendBaseURL,
		logger:          logger,
	}
}

// Handle processes a single event. Unknown event types are committed
// without action so a topic mix-up cannot wedge the consumer group.
func (w *Worker) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	switch evt.EventType {
	case event.TopicUserInvited:
		var data event.UserInvitedData
		if err := evt.UnmarshalData(&data); err != nil {
			return fmt.Errorf("unmarshal %s data: %w", evt.EventType, err)
		}
		return w.deliver(ctx, mailer.VerificationEmail(data.Email, w.verifyLink(data.Token)))

	case event.TopicVerificationResent:
		var data event.VerificationResentData
		if err := evt.UnmarshalData(&data); err != nil {
			return fmt.Errorf("unmarshal %s data: %w", evt.EventType, err)
		}
		return w.deliver(ctx, mailer.VerificationEmail(data.Email, w.verifyLink(data.Token)))

	case event.TopicPasswordResetRequested:
		var data event.PasswordResetRequestedData
		if err := evt.UnmarshalData(&data); err != nil {
			return fmt.Errorf("unmarshal %s data: %w", evt.EventType, err)
		}
		return w.deliver(ctx, mailer.PasswordResetEmail(data.Email, w.resetLink(data.Token)))

	default:
		w.logger.WarnContext(ctx, "ignoring unexpected event type",
			slog.String("event_type", evt.EventType),
			slog.String("event_id", evt.EventID),
		)
		return nil
	}
}

func (w *Worker) deliver(ctx context.Context, msg mailer.Message) error {
	if err := w.mailer.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver mail to %s: %w", msg.To, err)
	}

	w.logger.InfoContext(ctx, "mail sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)

	return nil
}

func (w *Worker) verifyLink(token string) string {
	return fmt.Sprintf("%s/auth/verify-email?token=%s", w.frontendBaseURL, url.QueryEscape(token))
}

func (w *Worker) resetLink(token string) string {
	return fmt.Sprintf("%s/auth/reset-password?token=%s", w.frontendBaseURL, url.QueryEscape(token))
}
