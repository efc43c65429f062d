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

type ScenarioModelRepo interface {
	Create(ctx context.Context, tx *gorm.DB, link *types.ScenarioModel) (*types.ScenarioModel, error)
	GetByScenarioID(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) ([]*types.ScenarioModel, error)
	GetActiveByScenarioID(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) (*types.ScenarioModel, error)
	// DeactivateAllForScenario clears is_active on every link row of the scenario.
	DeactivateAllForScenario(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) error
	// ActivateLink sets is_active on the single (scenario, model) row.
	ActivateLink(ctx context.Context, tx *gorm.DB, scenarioID, modelID uuid.UUID) error
	// LatestForScenario returns the most recently updated link row, used to
	// repair scenarios that lost their active link.
	LatestForScenario(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) (*types.ScenarioModel, error)
}

type scenarioModelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScenarioModelRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioModelRepo {
	return &scenarioModelRepo{db: db, log: baseLog.With("repo", "ScenarioModelRepo")}
}

func (r *scenarioModelRepo) Create(ctx context.Context, tx *gorm.DB, link *types.ScenarioModel) (*types.ScenarioModel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

func (r *scenarioModelRepo) GetByScenarioID(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) ([]*types.ScenarioModel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ScenarioModel
	if err := transaction.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *scenarioModelRepo) GetActiveByScenarioID(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) (*types.ScenarioModel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.ScenarioModel
	if err := transaction.WithContext(ctx).
		Where("scenario_id = ? AND is_active = ?", scenarioID, true).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *scenarioModelRepo) DeactivateAllForScenario(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.ScenarioModel{}).
		Where("scenario_id = ?", scenarioID).
		Update("is_active", false).Error; err != nil {
		return err
	}
	return nil
}

func (r *scenarioModelRepo) ActivateLink(ctx context.Context, tx *gorm.DB, scenarioID, modelID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.ScenarioModel{}).
		Where("scenario_id = ? AND model_id = ?", scenarioID, modelID).
		Update("is_active", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *scenarioModelRepo) LatestForScenario(ctx context.Context, tx *gorm.DB, scenarioID uuid.UUID) (*types.ScenarioModel, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.ScenarioModel
	if err := transaction.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		Order("updated_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}
