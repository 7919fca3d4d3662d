package implementation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/model"
	"interview-practice-be/internal/repository/specification"
	"interview-practice-be/pkg/database"
	"interview-practice-be/pkg/interview"
)

func TestInterviewRecordRepository(t *testing.T) {
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.InterviewRecord{}))

	repo := NewInterviewRecordRepository(db)
	ctx := context.Background()
	sessionID := "it-" + time.Now().Format("150405.000000")

	fb := interview.DefaultFeedback()
	rec := &entity.InterviewRecord{
		SessionId:       sessionID,
		ResumeFileName:  "cv.pdf",
		OverallScore:    fb.OverallScore,
		Evaluation:      fb.Evaluation,
		Strengths:       fb.Strengths,
		Weaknesses:      fb.Weaknesses,
		Suggestions:     fb.Suggestions,
		DurationSeconds: fb.Duration,
		Conversation:    []interview.Turn{{From: interview.SpeakerAI, Text: "Q", Timestamp: 1}},
		CompletedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, rec))
	t.Cleanup(func() { _ = repo.Delete(ctx, rec.Id) })

	got, err := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fb.Strengths, got.Strengths)
	assert.Equal(t, rec.Conversation, got.Conversation)

	count, err := repo.Count(ctx, specification.BySessionID{SessionID: sessionID}, specification.MinScore{Score: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	missing, err := repo.FindOne(ctx, specification.BySessionID{SessionID: "nope-" + sessionID})
	require.NoError(t, err)
	assert.Nil(t, missing)
}
