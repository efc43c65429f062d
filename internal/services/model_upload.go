package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/repos"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/storage"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/types"
)

// modelArtifactExt is the only accepted model file extension; artifacts are
// JSON scorer documents.
const modelArtifactExt = ".json"

type ModelUpload struct {
	Filename    string
	File        io.Reader
	Name        string
	MetricsJSON []byte
	Version     *float64
}

type ModelService interface {
	// UploadModel validates the upload, stores the artifact, and registers
	// the model with an inactive scenario link. Validation happens before
	// any storage or database write, so a rejected upload mutates nothing.
	UploadModel(ctx context.Context, scenarioID uuid.UUID, upload ModelUpload) (*types.MLModel, error)
}

type modelService struct {
	db           *gorm.DB
	log          *logger.Logger
	scenarioRepo repos.ScenarioRepo
	modelRepo    repos.ModelRepo
	linkRepo     repos.ScenarioModelRepo
	bucket       storage.BucketService
}

func NewModelService(
	db *gorm.DB,
	log *logger.Logger,
	scenarioRepo repos.ScenarioRepo,
	modelRepo repos.ModelRepo,
	linkRepo repos.ScenarioModelRepo,
	bucket storage.BucketService,
) ModelService {
	return &modelService{
		db:           db,
		log:          log.With("service", "ModelService"),
		scenarioRepo: scenarioRepo,
		modelRepo:    modelRepo,
		linkRepo:     linkRepo,
		bucket:       bucket,
	}
}

func (s *modelService) UploadModel(ctx context.Context, scenarioID uuid.UUID, upload ModelUpload) (*types.MLModel, error) {
	if _, err := s.scenarioRepo.GetByID(ctx, nil, scenarioID); err != nil {
		return nil, err
	}

	if !strings.EqualFold(filepath.Ext(upload.Filename), modelArtifactExt) {
		return nil, apperr.Validation("file", fmt.Sprintf("only %s model artifacts are allowed", modelArtifactExt))
	}
	if strings.TrimSpace(upload.Name) == "" {
		return nil, apperr.MissingField("model_name")
	}

	metrics, err := parseMetrics(upload.MetricsJSON)
	if err != nil {
		return nil, err
	}

	version := 1.0
	if upload.Version != nil {
		version = *upload.Version
	}

	modelID := uuid.New()
	key := fmt.Sprintf("%s/%s", modelID, upload.Filename)
	if err := s.bucket.UploadFile(ctx, storage.BucketCategoryModels, key, upload.File); err != nil {
		s.log.Error("Artifact upload failed", "key", key, "error", err)
		return nil, err
	}

	model := &types.MLModel{
		ModelID:       modelID,
		ModelName:     upload.Name,
		ModelFilename: upload.Filename,
		ModelURL:      s.bucket.GetPublicURL(storage.BucketCategoryModels, key),
		Accuracy:      metrics.Accuracy,
		Precision:     metrics.Precision,
		Recall:        metrics.Recall,
		F1Score:       metrics.F1Score,
		Version:       version,
		Status:        types.ModelStatusPending,
	}
	if _, err := s.modelRepo.Create(ctx, nil, model); err != nil {
		s.log.Error("Model record insert failed", "model_id", modelID, "error", err)
		return nil, fmt.Errorf("%w: insert model record: %v", apperr.ErrPersistence, err)
	}

	link := &types.ScenarioModel{
		ID:         uuid.New(),
		ScenarioID: scenarioID,
		ModelID:    modelID,
		IsActive:   false,
	}
	if _, err := s.linkRepo.Create(ctx, nil, link); err != nil {
		s.log.Error("Scenario link insert failed", "model_id", modelID, "error", err)
		return nil, fmt.Errorf("%w: insert scenario link: %v", apperr.ErrPersistence, err)
	}

	s.log.Info("Model uploaded", "model_id", modelID, "scenario_id", scenarioID, "filename", upload.Filename)
	return model, nil
}

func parseMetrics(raw []byte) (*types.ModelMetrics, error) {
	var metrics types.ModelMetrics
	decoder := json.NewDecoder(strings.NewReader(string(raw)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&metrics); err != nil {
		return nil, apperr.Validation("performance_metrics", fmt.Sprintf("malformed metrics JSON: %v", err))
	}
	for name, value := range map[string]float64{
		"accuracy":  metrics.Accuracy,
		"precision": metrics.Precision,
		"recall":    metrics.Recall,
		"f1_score":  metrics.F1Score,
	} {
		if value < 0 || value > 1 {
			return nil, apperr.Validation("performance_metrics", fmt.Sprintf("%s must be in [0,1]", name))
		}
	}
	return &metrics, nil
}
