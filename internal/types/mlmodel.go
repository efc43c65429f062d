package types

import (
	"time"

	"github.com/google/uuid"
)

type ModelStatus string

const (
	ModelStatusTraining ModelStatus = "training"
	ModelStatusDeployed ModelStatus = "deployed"
	ModelStatusFailed   ModelStatus = "failed"
	ModelStatusInactive ModelStatus = "inactive"
	ModelStatusPending  ModelStatus = "pending"
)

// ModelMetrics is the performance summary supplied on upload. Each value is
// a ratio in [0,1].
type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
}

type MLModel struct {
	ModelID        uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey;column:model_id" json:"model_id"`
	ModelName      string      `gorm:"not null;column:model_name" json:"model_name"`
	ModelFilename  string      `gorm:"not null;column:model_filename" json:"model_filename"`
	ModelURL       string      `gorm:"column:model_url" json:"model_url"`
	Accuracy       float64     `gorm:"column:accuracy" json:"accuracy"`
	Precision      float64     `gorm:"column:precision" json:"precision"`
	Recall         float64     `gorm:"column:recall" json:"recall"`
	F1Score        float64     `gorm:"column:f1_score" json:"f1_score"`
	Version        float64     `gorm:"column:version;default:1" json:"version"`
	Status         ModelStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	TrainingDataID *uuid.UUID  `gorm:"type:uuid;column:training_data_id" json:"training_data_id,omitempty"`
	CreatedAt      time.Time   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null;default:now()" json:"updated_at"`
	TrainedAt      *time.Time  `gorm:"column:trained_at" json:"trained_at,omitempty"`
}

func (MLModel) TableName() string { return "ml_models" }

func (m *MLModel) Metrics() ModelMetrics {
	return ModelMetrics{
		Accuracy:  m.Accuracy,
		Precision: m.Precision,
		Recall:    m.Recall,
		F1Score:   m.F1Score,
	}
}
