package nats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-practice-be/pkg/events"
)

func TestDecodeEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	src := events.InterviewCompleted("sess", 78, 847, 5, true, at)

	data, err := json.Marshal(events.BaseEvent{Type: src.EventType(), Data: src.Payload(), OccurredAt: src.Timestamp()})
	require.NoError(t, err)

	got, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, events.TypeInterviewCompleted, got.EventType())
	assert.Equal(t, "sess", got.Payload()["session_id"])
	assert.Equal(t, float64(78), got.Payload()["overall_score"])
	assert.True(t, at.Equal(got.Timestamp()))

	_, err = DecodeEvent([]byte(`{"data": {}}`))
	assert.Error(t, err)
	_, err = DecodeEvent([]byte(`nope`))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.interview.started", Subject(events.TypeInterviewStarted))
}
