package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/mlmodel"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/repos"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/types"
)

// Prediction is the outcome of one scoring call: the decision label and the
// probability mass of whichever class was selected (always >= 0.5).
type Prediction struct {
	PredictionID uuid.UUID `json:"prediction_id"`
	Result       bool      `json:"result"`
	Confidence   float64   `json:"confidence"`
}

type InferenceService interface {
	Predict(ctx context.Context, scenarioID uuid.UUID, applicant map[string]any) (*Prediction, error)
}

type inferenceService struct {
	db             *gorm.DB
	log            *logger.Logger
	scenarioRepo   repos.ScenarioRepo
	linkRepo       repos.ScenarioModelRepo
	predictionRepo repos.PredictionRepo
	cache          *mlmodel.Cache
}

func NewInferenceService(
	db *gorm.DB,
	log *logger.Logger,
	scenarioRepo repos.ScenarioRepo,
	linkRepo repos.ScenarioModelRepo,
	predictionRepo repos.PredictionRepo,
	cache *mlmodel.Cache,
) InferenceService {
	return &inferenceService{
		db:             db,
		log:            log.With("service", "InferenceService"),
		scenarioRepo:   scenarioRepo,
		linkRepo:       linkRepo,
		predictionRepo: predictionRepo,
		cache:          cache,
	}
}

func (s *inferenceService) Predict(ctx context.Context, scenarioID uuid.UUID, applicant map[string]any) (*Prediction, error) {
	if _, err := s.scenarioRepo.GetByID(ctx, nil, scenarioID); err != nil {
		return nil, err
	}

	row, err := buildFeatureRow(applicant)
	if err != nil {
		return nil, err
	}

	scorer, ok := s.cache.Current()
	if !ok {
		s.log.Warn("Prediction requested with empty model cache", "scenario_id", scenarioID)
		return nil, apperr.ErrModelNotLoaded
	}

	proba, err := scorer.PredictProba(*row)
	if err != nil {
		s.log.Error("Scoring object raised during execution", "scenario_id", scenarioID, "error", err)
		return nil, &apperr.InferError{Err: err}
	}

	result := proba[1] >= 0.5
	confidence := proba[0]
	if result {
		confidence = proba[1]
	}

	prediction := &Prediction{
		PredictionID: uuid.New(),
		Result:       result,
		Confidence:   confidence,
	}
	s.recordPrediction(ctx, scenarioID, prediction, row)
	return prediction, nil
}

// recordPrediction persists the served prediction for auditing. The scoring
// already succeeded, so a failed insert is logged rather than surfaced.
func (s *inferenceService) recordPrediction(ctx context.Context, scenarioID uuid.UUID, prediction *Prediction, row *mlmodel.FeatureRow) {
	var modelID *uuid.UUID
	if active, err := s.linkRepo.GetActiveByScenarioID(ctx, nil, scenarioID); err == nil {
		modelID = &active.ModelID
	}

	payload, err := json.Marshal(row)
	if err != nil {
		s.log.Warn("Could not marshal applicant payload", "error", err)
		payload = nil
	}

	record := &types.PredictionResponse{
		PredictionID: prediction.PredictionID,
		ScenarioID:   scenarioID,
		ModelID:      modelID,
		Result:       prediction.Result,
		Confidence:   prediction.Confidence,
		Applicant:    datatypes.JSON(payload),
	}
	if _, err := s.predictionRepo.Create(ctx, nil, record); err != nil {
		s.log.Warn("Could not persist prediction response", "prediction_id", prediction.PredictionID, "error", err)
	}
}

var numericFeatureFields = []string{
	"age",
	"income",
	"time_spent_on_platform",
	"number_of_sessions",
	"fields_filled_percentage",
	"previous_year_filing",
}

var categoricalFeatureFields = []string{
	"employment_type",
	"marital_status",
	"device_type",
	"referral_source",
}

// buildFeatureRow validates the applicant payload against the fixed field
// set and normalizes it: categoricals lower-cased, numerics coerced to
// float64.
func buildFeatureRow(applicant map[string]any) (*mlmodel.FeatureRow, error) {
	numeric := map[string]float64{}
	for _, field := range numericFeatureFields {
		value, ok := applicant[field]
		if !ok {
			return nil, apperr.MissingField(field)
		}
		f, err := coerceFloat(value)
		if err != nil {
			return nil, apperr.Validation(field, err.Error())
		}
		numeric[field] = f
	}

	categorical := map[string]string{}
	for _, field := range categoricalFeatureFields {
		value, ok := applicant[field]
		if !ok {
			return nil, apperr.MissingField(field)
		}
		str, ok := value.(string)
		if !ok {
			return nil, apperr.Validation(field, "expected a string value")
		}
		categorical[field] = strings.ToLower(strings.TrimSpace(str))
	}

	return &mlmodel.FeatureRow{
		Age:                    numeric["age"],
		Income:                 numeric["income"],
		TimeSpentOnPlatform:    numeric["time_spent_on_platform"],
		NumberOfSessions:       numeric["number_of_sessions"],
		FieldsFilledPercentage: numeric["fields_filled_percentage"],
		PreviousYearFiling:     numeric["previous_year_filing"],
		EmploymentType:         categorical["employment_type"],
		MaritalStatus:          categorical["marital_status"],
		DeviceType:             categorical["device_type"],
		ReferralSource:         categorical["referral_source"],
	}, nil
}

func coerceFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a numeric value, got %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a numeric value")
	}
}
