package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invitePayload struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	payload := invitePayload{Email: "new.hire@teamboard.io", Role: "team-member"}
	event, err := NewEvent("user.invited", "user-42", "user", "teamboard-server", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "user.invited", event.EventType)
	assert.Equal(t, "user-42", event.AggregateID)
	assert.Equal(t, "user", event.AggregateType)
	assert.Equal(t, "teamboard-server", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var decoded invitePayload
	require.NoError(t, json.Unmarshal(event.Data, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent_DistinctEventIDs(t *testing.T) {
	a, err := NewEvent("user.invited", "user-1", "user", "teamboard-server", nil)
	require.NoError(t, err)
	b, err := NewEvent("user.invited", "user-1", "user", "teamboard-server", nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestNewEvent_UnserializablePayload(t *testing.T) {
	_, err := NewEvent("user.invited", "user-1", "user", "teamboard-server", make(chan int))
	require.Error(t, err)
}

func TestEvent_WireRoundTrip(t *testing.T) {
	original, err := NewEvent("user.password_reset_requested", "user-9", "user", "teamboard-server",
		map[string]string{"email": "dev@teamboard.io"})
	require.NoError(t, err)
	original.WithCorrelationID("corr-555").WithMetadata("ip", "203.0.113.9")

	wire, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(wire)
	require.NoError(t, err)

	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, original.EventType, restored.EventType)
	assert.Equal(t, original.AggregateID, restored.AggregateID)
	assert.Equal(t, "corr-555", restored.CorrelationID)
	assert.Equal(t, "203.0.113.9", restored.Metadata["ip"])
	assert.JSONEq(t, string(original.Data), string(restored.Data))
}

func TestEvent_BuilderChaining(t *testing.T) {
	event := &Event{EventID: "evt-1", EventType: "user.invited"}

	same := event.WithCorrelationID("corr-1").WithMetadata("a", "1").WithMetadata("b", "2")

	assert.Same(t, event, same)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, "1", event.Metadata["a"])
	assert.Equal(t, "2", event.Metadata["b"])
}

func TestEvent_UnmarshalData(t *testing.T) {
	event, err := NewEvent("user.invited", "user-3", "user", "teamboard-server",
		invitePayload{Email: "pm@teamboard.io", Role: "project-manager"})
	require.NoError(t, err)

	var got invitePayload
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, "project-manager", got.Role)

	bad := &Event{Data: json.RawMessage(`not json`)}
	var target map[string]string
	require.Error(t, bad.UnmarshalData(&target))
}

func TestUnmarshalEvent_RejectsGarbage(t *testing.T) {
	for _, wire := range [][]byte{[]byte(`{broken`), {}} {
		_, err := UnmarshalEvent(wire)
		require.Error(t, err)
	}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "teamboard", TopicPrefix)

	tests := []struct {
		domain, action, want string
	}{
		{"user", "invited", "teamboard.user.invited"},
		{"user", "email_verification_requested", "teamboard.user.email_verification_requested"},
		{"user", "password_reset_requested", "teamboard.user.password_reset_requested"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
	}
}

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"kafka-1:9092", "kafka-2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async, "auth events must be acked before the request returns")
}

func TestNewProducer_ConnectsLazily(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), testLogger())
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)

	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokersConfigured(t *testing.T) {
	for _, brokers := range [][]string{nil, {}} {
		err := PingBrokers(t.Context(), brokers)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no brokers configured")
	}
}
