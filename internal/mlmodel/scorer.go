package mlmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// FeatureRow is a validated, normalized applicant feature vector. Categorical
// values are lower-cased before scoring; numeric values are already coerced
// to float64.
type FeatureRow struct {
	Age                    float64
	Income                 float64
	TimeSpentOnPlatform    float64
	NumberOfSessions       float64
	FieldsFilledPercentage float64
	PreviousYearFiling     float64
	EmploymentType         string
	MaritalStatus          string
	DeviceType             string
	ReferralSource         string
}

// Scorer is the deserialized scoring object. PredictProba returns the
// two-class probability mass as {p(negative), p(positive)}.
type Scorer interface {
	PredictProba(row FeatureRow) ([2]float64, error)
}

const artifactSchemaVersion = 1

// logisticModel is the on-disk artifact format: a logistic regression over
// the fixed feature set, numeric weights keyed by field name and categorical
// weights keyed by field name then value.
type logisticModel struct {
	SchemaVersion      int                           `json:"schema_version"`
	ModelType          string                        `json:"model_type"`
	Intercept          float64                       `json:"intercept"`
	NumericWeights     map[string]float64            `json:"numeric_weights"`
	CategoricalWeights map[string]map[string]float64 `json:"categorical_weights"`
}

// DecodeArtifact turns serialized artifact bytes into a usable scorer.
func DecodeArtifact(raw []byte) (Scorer, error) {
	var model logisticModel
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if model.SchemaVersion != artifactSchemaVersion {
		return nil, fmt.Errorf("unsupported artifact schema version %d", model.SchemaVersion)
	}
	if model.ModelType != "logistic_regression" {
		return nil, fmt.Errorf("unsupported model type %q", model.ModelType)
	}
	if len(model.NumericWeights) == 0 && len(model.CategoricalWeights) == 0 {
		return nil, fmt.Errorf("artifact carries no weights")
	}
	return &model, nil
}

func (m *logisticModel) PredictProba(row FeatureRow) ([2]float64, error) {
	z := m.Intercept

	numeric := map[string]float64{
		"age":                      row.Age,
		"income":                   row.Income,
		"time_spent_on_platform":   row.TimeSpentOnPlatform,
		"number_of_sessions":       row.NumberOfSessions,
		"fields_filled_percentage": row.FieldsFilledPercentage,
		"previous_year_filing":     row.PreviousYearFiling,
	}
	for field, weight := range m.NumericWeights {
		value, ok := numeric[field]
		if !ok {
			return [2]float64{}, fmt.Errorf("model references unknown numeric field %q", field)
		}
		z += weight * value
	}

	categorical := map[string]string{
		"employment_type": row.EmploymentType,
		"marital_status":  row.MaritalStatus,
		"device_type":     row.DeviceType,
		"referral_source": row.ReferralSource,
	}
	for field, weights := range m.CategoricalWeights {
		value, ok := categorical[field]
		if !ok {
			return [2]float64{}, fmt.Errorf("model references unknown categorical field %q", field)
		}
		weight, ok := weights[strings.ToLower(value)]
		if !ok {
			return [2]float64{}, fmt.Errorf("unknown %s value %q", field, value)
		}
		z += weight
	}

	p1 := 1.0 / (1.0 + math.Exp(-z))
	return [2]float64{1 - p1, p1}, nil
}
