package events

import (
	"context"
	"time"
)

const (
	TypeInterviewStarted   = "interview.started"
	TypeInterviewCompleted = "interview.completed"
)

// Event defines the contract for all domain events.
type Event interface {
	// EventType returns the subject suffix, e.g. "interview.started".
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher delivers events to a bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func InterviewStarted(sessionID string, at time.Time) Event {
	return BaseEvent{
		Type:       TypeInterviewStarted,
		Data:       map[string]interface{}{"session_id": sessionID},
		OccurredAt: at,
	}
}

func InterviewCompleted(sessionID string, score, durationSeconds, turns int, usedDefaults bool, at time.Time) Event {
	return BaseEvent{
		Type: TypeInterviewCompleted,
		Data: map[string]interface{}{
			"session_id":       sessionID,
			"overall_score":    score,
			"duration_seconds": durationSeconds,
			"turns":            turns,
			"used_defaults":    usedDefaults,
		},
		OccurredAt: at,
	}
}
