package mailworker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamboardhq/teamboard/internal/event"
	"github.com/teamboardhq/teamboard/internal/mailer"
	pkgkafka "github.com/teamboardhq/teamboard/pkg/kafka"
)

type recordingMailer struct {
	messages []mailer.Message
	err      error
}

func (m *recordingMailer) Deliver(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func newTestWorker(m mailer.Mailer) *Worker {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewWorker(m, "https://teamboard.example.com", logger)
}

func mustEvent(t *testing.T, eventType string, data any) *pkgkafka.Event {
	t.Helper()
	evt, err := pkgkafka.NewEvent(eventType, "user-1", event.AggregateTypeUser, event.SourceServer, data)
	require.NoError(t, err)
	return evt
}

func TestHandle_UserInvited(t *testing.T) {
	m := &recordingMailer{}
	w := newTestWorker(m)

	evt := mustEvent(t, event.TopicUserInvited, event.UserInvitedData{
		UserID: "user-1",
		Email:  "invitee@example.com",
		Role:   "team-member",
		Token:  "tok+en",
	})

	err := w.Handle(context.Background(), evt)

	require.NoError(t, err)
	require.Len(t, m.messages, 1)
	assert.Equal(t, "invitee@example.com", m.messages[0].To)
	assert.Contains(t, m.messages[0].Subject, "Verify")
	assert.Contains(t, m.messages[0].HTML, "https://teamboard.example.com/auth/verify-email?token=tok%2Ben")
}

func TestHandle_VerificationResent(t *testing.T) {
	m := &recordingMailer{}
	w := newTestWorker(m)

	evt := mustEvent(t, event.TopicVerificationResent, event.VerificationResentData{
		UserID: "user-1",
		Email:  "invitee@example.com",
		Token:  "token",
	})

	err := w.Handle(context.Background(), evt)

	require.NoError(t, err)
	require.Len(t, m.messages, 1)
	assert.Contains(t, m.messages[0].HTML, "/auth/verify-email?token=token")
}

func TestHandle_PasswordResetRequested(t *testing.T) {
	m := &recordingMailer{}
	w := newTestWorker(m)

	evt := mustEvent(t, event.TopicPasswordResetRequested, event.PasswordResetRequestedData{
		UserID: "user-1",
		Email:  "jane@example.com",
		Token:  "reset-token",
	})

	err := w.Handle(context.Background(), evt)

	require.NoError(t, err)
	require.Len(t, m.messages, 1)
	assert.Equal(t, "jane@example.com", m.messages[0].To)
	assert.Contains(t, m.messages[0].Subject, "Reset")
	assert.Contains(t, m.messages[0].HTML, "/auth/reset-password?token=reset-token")
}

func TestHandle_UnknownEventTypeIgnored(t *testing.T) {
	m := &recordingMailer{}
	w := newTestWorker(m)

	evt := mustEvent(t, "teamboard.user.verified", event.UserVerifiedData{UserID: "user-1", Email: "jane@example.com"})

	err := w.Handle(context.Background(), evt)

	require.NoError(t, err)
	assert.Empty(t, m.messages)
}

func TestHandle_DeliveryFailurePropagates(t *testing.T) {
	m := &recordingMailer{err: errors.New("provider down")}
	w := newTestWorker(m)

	evt := mustEvent(t, event.TopicUserInvited, event.UserInvitedData{
		UserID: "user-1",
		Email:  "invitee@example.com",
		Token:  "token",
	})

	err := w.Handle(context.Background(), evt)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}

func TestTopics(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"teamboard.user.invited",
		"teamboard.user.verification-resent",
		"teamboard.user.password-reset-requested",
	}, Topics())
}
