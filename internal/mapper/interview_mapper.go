package mapper

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/model"
	"interview-practice-be/pkg/interview"
)

type InterviewMapper struct{}

func NewInterviewMapper() *InterviewMapper {
	return &InterviewMapper{}
}

// StateToRecord snapshots a finished session. It returns nil while the
// session has no feedback.
func (m *InterviewMapper) StateToRecord(sessionID string, s interview.State, completedAt time.Time) *entity.InterviewRecord {
	if s.Feedback == nil {
		return nil
	}
	r := &entity.InterviewRecord{
		Id:              uuid.New(),
		SessionId:       sessionID,
		OverallScore:    s.Feedback.OverallScore,
		Evaluation:      s.Feedback.Evaluation,
		Strengths:       append([]string{}, s.Feedback.Strengths...),
		Weaknesses:      append([]string{}, s.Feedback.Weaknesses...),
		Suggestions:     append([]string{}, s.Feedback.Suggestions...),
		DurationSeconds: s.Feedback.Duration,
		Conversation:    append([]interview.Turn{}, s.Conversation...),
		Diagnostic:      s.Diagnostic,
		StartedAt:       s.StartedAt,
		CompletedAt:     completedAt,
	}
	if s.Resume != nil {
		r.ResumeFileName = s.Resume.FileName
		r.ResumeFileSize = s.Resume.FileSize
	}
	return r
}

func (m *InterviewMapper) RecordToModel(r *entity.InterviewRecord) *model.InterviewRecord {
	if r == nil {
		return nil
	}
	return &model.InterviewRecord{
		Id:              r.Id,
		SessionId:       r.SessionId,
		ResumeFileName:  r.ResumeFileName,
		ResumeFileSize:  r.ResumeFileSize,
		OverallScore:    r.OverallScore,
		Evaluation:      r.Evaluation,
		Strengths:       toJSON(r.Strengths),
		Weaknesses:      toJSON(r.Weaknesses),
		Suggestions:     toJSON(r.Suggestions),
		DurationSeconds: r.DurationSeconds,
		Conversation:    toJSON(r.Conversation),
		Diagnostic:      r.Diagnostic,
		StartedAt:       r.StartedAt,
		CompletedAt:     r.CompletedAt,
		CreatedAt:       r.CreatedAt,
	}
}

func (m *InterviewMapper) RecordToEntity(r *model.InterviewRecord) *entity.InterviewRecord {
	if r == nil {
		return nil
	}
	out := &entity.InterviewRecord{
		Id:              r.Id,
		SessionId:       r.SessionId,
		ResumeFileName:  r.ResumeFileName,
		ResumeFileSize:  r.ResumeFileSize,
		OverallScore:    r.OverallScore,
		Evaluation:      r.Evaluation,
		DurationSeconds: r.DurationSeconds,
		Diagnostic:      r.Diagnostic,
		StartedAt:       r.StartedAt,
		CompletedAt:     r.CompletedAt,
		CreatedAt:       r.CreatedAt,
	}
	fromJSON(r.Strengths, &out.Strengths)
	fromJSON(r.Weaknesses, &out.Weaknesses)
	fromJSON(r.Suggestions, &out.Suggestions)
	fromJSON(r.Conversation, &out.Conversation)
	return out
}

func (m *InterviewMapper) RecordsToEntities(models []*model.InterviewRecord) []*entity.InterviewRecord {
	out := make([]*entity.InterviewRecord, 0, len(models))
	for _, r := range models {
		out = append(out, m.RecordToEntity(r))
	}
	return out
}

func toJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

func fromJSON(raw datatypes.JSON, dst interface{}) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func (m *InterviewMapper) RecordToResponse(r *entity.InterviewRecord) *dto.InterviewRecordResponse {
	if r == nil {
		return nil
	}
	return &dto.InterviewRecordResponse{
		Id:              r.Id,
		SessionId:       r.SessionId,
		ResumeFileName:  r.ResumeFileName,
		OverallScore:    r.OverallScore,
		Evaluation:      r.Evaluation,
		Strengths:       r.Strengths,
		Weaknesses:      r.Weaknesses,
		Suggestions:     r.Suggestions,
		DurationSeconds: r.DurationSeconds,
		Duration:        interview.FormatElapsed(r.DurationSeconds),
		Conversation:    r.Conversation,
		UsedDefaults:    r.UsedDefaults(),
		Diagnostic:      r.Diagnostic,
		CompletedAt:     r.CompletedAt,
	}
}
