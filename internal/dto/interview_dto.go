package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"interview-practice-be/pkg/interview"
)

type CreateSessionResponse struct {
	SessionId string          `json:"session_id"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	State     interview.State `json:"state"`
}

// UploadCompleteRequest hands over a resume that was parsed elsewhere.
type UploadCompleteRequest struct {
	FileName          string          `json:"fileName" validate:"required"`
	FileSize          int64           `json:"fileSize" validate:"gte=0"`
	ExtractedSections json.RawMessage `json:"extractedSections"`
}

type AnswerRequest struct {
	Text string `json:"text" validate:"required"`
}

// DraftRequest replaces the answer draft; an empty text clears it.
type DraftRequest struct {
	Text string `json:"text"`
}

type EmailFeedbackRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RecordListRequest struct {
	Page         int  `query:"page"`
	Limit        int  `query:"limit"`
	MinScore     int  `query:"min_score"`
	UsedDefaults bool `query:"used_defaults"`
}

type InterviewRecordResponse struct {
	Id              uuid.UUID        `json:"id"`
	SessionId       string           `json:"session_id"`
	ResumeFileName  string           `json:"resume_file_name"`
	OverallScore    int              `json:"overall_score"`
	Evaluation      string           `json:"evaluation"`
	Strengths       []string         `json:"strengths"`
	Weaknesses      []string         `json:"weaknesses"`
	Suggestions     []string         `json:"suggestions"`
	DurationSeconds int              `json:"duration_seconds"`
	Duration        string           `json:"duration"`
	Conversation    []interview.Turn `json:"conversation"`
	UsedDefaults    bool             `json:"used_defaults"`
	Diagnostic      *string          `json:"diagnostic,omitempty"`
	CompletedAt     time.Time        `json:"completed_at"`
}

type RecordListResponse struct {
	Items []*InterviewRecordResponse `json:"items"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

// ArchiveInterviewMessage is the payload on the archive topic.
type ArchiveInterviewMessage struct {
	RecordId    uuid.UUID       `json:"record_id"`
	SessionId   string          `json:"session_id"`
	State       interview.State `json:"state"`
	CompletedAt time.Time       `json:"completed_at"`
}
