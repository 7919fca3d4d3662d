package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/pkg/interview"
)

func archiveMessage(t *testing.T, withFeedback bool) (*message.Message, uuid.UUID) {
	t.Helper()
	st := interview.InitialState()
	if withFeedback {
		fb := interview.DefaultFeedback()
		st.Stage = interview.StageFeedback
		st.Feedback = &fb
	}
	id := uuid.New()
	body, err := json.Marshal(dto.ArchiveInterviewMessage{
		RecordId:    id,
		SessionId:   "sess-1",
		State:       st,
		CompletedAt: time.Now(),
	})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), body), id
}

func acked(t *testing.T, msg *message.Message) bool {
	t.Helper()
	select {
	case <-msg.Acked():
		return true
	case <-msg.Nacked():
		return false
	case <-time.After(time.Second):
		t.Fatal("message was neither acked nor nacked")
		return false
	}
}

func TestConsumerPersistsRecord(t *testing.T) {
	repo := &fakeRecordRepo{}
	cs := NewConsumerService(nil, ArchiveTopic, repo, logger.NewNop()).(*consumerService)

	msg, id := archiveMessage(t, true)
	cs.processMessage(context.Background(), msg)

	assert.True(t, acked(t, msg))
	require.Equal(t, 1, repo.createdCount())
	assert.Equal(t, id, repo.created[0].Id)
	assert.Equal(t, "sess-1", repo.created[0].SessionId)
	assert.Equal(t, 78, repo.created[0].OverallScore)
}

func TestConsumerSkipsDuplicatesAndGarbage(t *testing.T) {
	repo := &fakeRecordRepo{existing: &entity.InterviewRecord{}}
	cs := NewConsumerService(nil, ArchiveTopic, repo, logger.NewNop()).(*consumerService)

	msg, _ := archiveMessage(t, true)
	cs.processMessage(context.Background(), msg)
	assert.True(t, acked(t, msg))

	noFeedback, _ := archiveMessage(t, false)
	cs.processMessage(context.Background(), noFeedback)
	assert.True(t, acked(t, noFeedback))

	garbage := message.NewMessage(watermill.NewUUID(), []byte("{"))
	cs.processMessage(context.Background(), garbage)
	assert.True(t, acked(t, garbage))

	assert.Equal(t, 0, repo.createdCount())
}

func TestConsumerNacksOnLookupError(t *testing.T) {
	repo := &fakeRecordRepo{findErr: assert.AnError}
	cs := NewConsumerService(nil, ArchiveTopic, repo, logger.NewNop()).(*consumerService)

	msg, _ := archiveMessage(t, true)
	cs.processMessage(context.Background(), msg)
	assert.False(t, acked(t, msg))
}
