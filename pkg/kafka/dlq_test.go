package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDLQTopic(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"teamboard.user.invited", "teamboard.dlq.teamboard.user.invited"},
		{"teamboard.user.password_reset_requested", "teamboard.dlq.teamboard.user.password_reset_requested"},
		{"notifications", "teamboard.dlq.notifications"},
		{"user-events", "teamboard.dlq.user-events"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DLQTopic(tt.source))
	}
}

func TestDLQTopic_AlwaysUnderPrefix(t *testing.T) {
	assert.Equal(t, "teamboard.dlq", DLQTopicPrefix)
	assert.Contains(t, DLQTopic("any.topic"), DLQTopicPrefix+".")
}
