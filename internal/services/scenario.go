package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/repos"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/types"
)

type ScenarioService interface {
	ListScenarios(ctx context.Context) ([]*types.Scenario, error)
	ListScenarioModels(ctx context.Context, scenarioID uuid.UUID) ([]*types.ScenarioModel, error)
}

type scenarioService struct {
	db           *gorm.DB
	log          *logger.Logger
	scenarioRepo repos.ScenarioRepo
	linkRepo     repos.ScenarioModelRepo
}

func NewScenarioService(db *gorm.DB, log *logger.Logger, scenarioRepo repos.ScenarioRepo, linkRepo repos.ScenarioModelRepo) ScenarioService {
	return &scenarioService{
		db:           db,
		log:          log.With("service", "ScenarioService"),
		scenarioRepo: scenarioRepo,
		linkRepo:     linkRepo,
	}
}

func (s *scenarioService) ListScenarios(ctx context.Context) ([]*types.Scenario, error) {
	scenarios, err := s.scenarioRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		s.log.Info("No scenarios found")
		return nil, apperr.ErrNotFound
	}
	return scenarios, nil
}

func (s *scenarioService) ListScenarioModels(ctx context.Context, scenarioID uuid.UUID) ([]*types.ScenarioModel, error) {
	if _, err := s.scenarioRepo.GetByID(ctx, nil, scenarioID); err != nil {
		return nil, err
	}
	links, err := s.linkRepo.GetByScenarioID(ctx, nil, scenarioID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		s.log.Info("No models linked to scenario", "scenario_id", scenarioID)
		return nil, apperr.ErrNotFound
	}
	return links, nil
}
