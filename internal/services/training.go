package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/repos"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/storage"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/types"
)

// TrainingRun is the acknowledgement for a training kickoff. Training itself
// runs out of process; this API only records and acknowledges the request.
type TrainingRun struct {
	TrainingID uuid.UUID `json:"training_id"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

type TrainingService interface {
	UploadTrainingData(ctx context.Context, scenarioID uuid.UUID, filename string, file io.Reader) (*types.TrainingData, error)
	StartTraining(ctx context.Context, scenarioID, dataID uuid.UUID) (*TrainingRun, error)
}

type trainingService struct {
	db        *gorm.DB
	log       *logger.Logger
	scenarios repos.ScenarioRepo
	dataRepo  repos.TrainingDataRepo
	bucket    storage.BucketService
}

func NewTrainingService(
	db *gorm.DB,
	log *logger.Logger,
	scenarioRepo repos.ScenarioRepo,
	dataRepo repos.TrainingDataRepo,
	bucket storage.BucketService,
) TrainingService {
	return &trainingService{
		db:        db,
		log:       log.With("service", "TrainingService"),
		scenarios: scenarioRepo,
		dataRepo:  dataRepo,
		bucket:    bucket,
	}
}

func (s *trainingService) UploadTrainingData(ctx context.Context, scenarioID uuid.UUID, filename string, file io.Reader) (*types.TrainingData, error) {
	if _, err := s.scenarios.GetByID(ctx, nil, scenarioID); err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, apperr.Validation("file", "only CSV files are allowed")
	}

	uploadID := uuid.New()
	key := fmt.Sprintf("%s/%s", uploadID, filename)
	if err := s.bucket.UploadFile(ctx, storage.BucketCategoryTrainingData, key, file); err != nil {
		s.log.Error("Training data upload failed", "key", key, "error", err)
		return nil, err
	}

	record := &types.TrainingData{
		TrainingDataID: uploadID,
		Name:           filename,
		URL:            s.bucket.GetPublicURL(storage.BucketCategoryTrainingData, key),
		UsedStatus:     false,
	}
	if _, err := s.dataRepo.Create(ctx, nil, record); err != nil {
		s.log.Error("Training data metadata insert failed", "upload_id", uploadID, "error", err)
		return nil, fmt.Errorf("%w: insert training data record: %v", apperr.ErrPersistence, err)
	}

	s.log.Info("Training data uploaded", "upload_id", uploadID, "filename", filename)
	return record, nil
}

// StartTraining acknowledges the request without launching a real training
// job; a training worker would pick the dataset up from here.
func (s *trainingService) StartTraining(ctx context.Context, scenarioID, dataID uuid.UUID) (*TrainingRun, error) {
	if _, err := s.scenarios.GetByID(ctx, nil, scenarioID); err != nil {
		return nil, err
	}
	if _, err := s.dataRepo.GetByID(ctx, nil, dataID); err != nil {
		return nil, err
	}

	run := &TrainingRun{
		TrainingID: uuid.New(),
		Status:     "training_started",
		Timestamp:  time.Now().UTC(),
	}
	s.log.Info("Training kickoff acknowledged", "scenario_id", scenarioID, "data_id", dataID, "training_id", run.TrainingID)
	return run, nil
}
