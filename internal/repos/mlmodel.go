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

type ModelRepo interface {
	Create(ctx context.Context, tx *gorm.DB, model *types.MLModel) (*types.MLModel, error)
	GetByID(ctx context.Context, tx *gorm.DB, modelID uuid.UUID) (*types.MLModel, error)
	SetStatus(ctx context.Context, tx *gorm.DB, modelID uuid.UUID, status types.ModelStatus) error
}

type modelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModelRepo(db *gorm.DB, baseLog *logger.Logger) ModelRepo {
	return &modelRepo{db: db, log: baseLog.With("repo", "ModelRepo")}
}

func (r *modelRepo) Create(ctx context.Context, tx *gorm.DB, model *types.MLModel) (*types.MLModel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}
	return model, nil
}

func (r *modelRepo) GetByID(ctx context.Context, tx *gorm.DB, modelID uuid.UUID) (*types.MLModel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.MLModel
	if err := transaction.WithContext(ctx).
		Where("model_id = ?", modelID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *modelRepo) SetStatus(ctx context.Context, tx *gorm.DB, modelID uuid.UUID, status types.ModelStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.MLModel{}).
		Where("model_id = ?", modelID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
