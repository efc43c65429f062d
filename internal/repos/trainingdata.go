package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/types"
)

type TrainingDataRepo interface {
	Create(ctx context.Context, tx *gorm.DB, data *types.TrainingData) (*types.TrainingData, error)
	GetByID(ctx context.Context, tx *gorm.DB, dataID uuid.UUID) (*types.TrainingData, error)
}

type trainingDataRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingDataRepo(db *gorm.DB, baseLog *logger.Logger) TrainingDataRepo {
	return &trainingDataRepo{db: db, log: baseLog.With("repo", "TrainingDataRepo")}
}

func (r *trainingDataRepo) Create(ctx context.Context, tx *gorm.DB, data *types.TrainingData) (*types.TrainingData, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(data).Error; err != nil {
		return nil, err
	}
	return data, nil
}

func (r *trainingDataRepo) GetByID(ctx context.Context, tx *gorm.DB, dataID uuid.UUID) (*types.TrainingData, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.TrainingData
	if err := transaction.WithContext(ctx).
		Where("model_training_data_id = ?", dataID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}
