package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/mapper"
	"interview-practice-be/internal/model"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/internal/repository/specification"
)

type InterviewRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InterviewMapper
}

func NewInterviewRecordRepository(db *gorm.DB) contract.InterviewRecordRepository {
	return &InterviewRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewInterviewMapper(),
	}
}

func (r *InterviewRecordRepositoryImpl) Create(ctx context.Context, record *entity.InterviewRecord) error {
	m := r.mapper.RecordToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.RecordToEntity(m)
	return nil
}

// FindOne returns nil, nil when nothing matches.
func (r *InterviewRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InterviewRecord, error) {
	var m model.InterviewRecord
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RecordToEntity(&m), nil
}

func (r *InterviewRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InterviewRecord, error) {
	var models []*model.InterviewRecord
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.RecordsToEntities(models), nil
}

func (r *InterviewRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.Apply(r.db.WithContext(ctx).Model(&model.InterviewRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *InterviewRecordRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.InterviewRecord{}, id).Error
}
