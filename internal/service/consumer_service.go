package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/mapper"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/internal/repository/specification"
)

const ArchiveTopic = "ARCHIVE_INTERVIEW"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService persists finished interviews queued on the archive topic.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	repo       contract.InterviewRecordRepository
	mapper     *mapper.InterviewMapper
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	repo contract.InterviewRecordRepository,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		repo:       repo,
		mapper:     mapper.NewInterviewMapper(),
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ArchiveInterviewMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ARCHIVE", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // poison message, retrying cannot help
		return
	}

	record := cs.mapper.StateToRecord(payload.SessionId, payload.State, payload.CompletedAt)
	if record == nil {
		cs.logger.Warn("ARCHIVE", "Session has no feedback, skipping", map[string]interface{}{"session_id": payload.SessionId})
		msg.Ack()
		return
	}

	if payload.RecordId != uuid.Nil {
		record.Id = payload.RecordId
	}

	// A redelivered message must not create a second record.
	existing, err := cs.repo.FindOne(ctx, specification.ByID{ID: record.Id})
	if err != nil {
		cs.logger.Error("ARCHIVE", "Failed to look up record", map[string]interface{}{"session_id": payload.SessionId, "error": err.Error()})
		msg.Nack()
		return
	}
	if existing != nil {
		msg.Ack()
		return
	}

	if err := cs.repo.Create(ctx, record); err != nil {
		cs.logger.Error("ARCHIVE", "Failed to persist record", map[string]interface{}{"session_id": payload.SessionId, "error": err.Error()})
		msg.Nack()
		return
	}

	cs.logger.Info("ARCHIVE", "Interview archived", map[string]interface{}{
		"session_id": payload.SessionId,
		"record_id":  record.Id.String(),
		"score":      record.OverallScore,
	})
	msg.Ack()
}
