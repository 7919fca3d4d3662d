package contract

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/repository/specification"
)

// ErrRepositoryUnavailable is returned when no database is configured.
var ErrRepositoryUnavailable = errors.New("interview archive is not configured")

type InterviewRecordRepository interface {
	Create(ctx context.Context, record *entity.InterviewRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InterviewRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InterviewRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
