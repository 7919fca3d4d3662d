package entity

import (
	"time"

	"github.com/google/uuid"

	"interview-practice-be/pkg/interview"
)

// InterviewRecord is the archived outcome of one finished interview.
type InterviewRecord struct {
	Id              uuid.UUID
	SessionId       string
	ResumeFileName  string
	ResumeFileSize  int64
	OverallScore    int
	Evaluation      string
	Strengths       []string
	Weaknesses      []string
	Suggestions     []string
	DurationSeconds int
	Conversation    []interview.Turn
	Diagnostic      *string
	StartedAt       *time.Time
	CompletedAt     time.Time
	CreatedAt       time.Time
}

// UsedDefaults reports whether any feedback field came from the defaults.
func (r *InterviewRecord) UsedDefaults() bool {
	return r.Diagnostic != nil
}
