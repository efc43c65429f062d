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

type ScenarioRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Scenario, error)
	GetByID(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) (*types.Scenario, error)
}

type scenarioRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScenarioRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioRepo {
	return &scenarioRepo{db: db, log: baseLog.With("repo", "ScenarioRepo")}
}

func (r *scenarioRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Scenario, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Scenario
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scenarioRepo) GetByID(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) (*types.Scenario, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Scenario
	if err := transaction.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}
