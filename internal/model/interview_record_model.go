package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InterviewRecord struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId       string         `gorm:"type:text;not null;index"`
	ResumeFileName  string         `gorm:"type:text"`
	ResumeFileSize  int64          `gorm:"not null;default:0"`
	OverallScore    int            `gorm:"not null"`
	Evaluation      string         `gorm:"type:text"`
	Strengths       datatypes.JSON `gorm:"type:jsonb"`
	Weaknesses      datatypes.JSON `gorm:"type:jsonb"`
	Suggestions     datatypes.JSON `gorm:"type:jsonb"`
	DurationSeconds int            `gorm:"not null;default:0"`
	Conversation    datatypes.JSON `gorm:"type:jsonb"`
	Diagnostic      *string        `gorm:"type:text"`
	StartedAt       *time.Time
	CompletedAt     time.Time      `gorm:"not null;index"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (InterviewRecord) TableName() string {
	return "interview_records"
}
