package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PredictionResponse records one served prediction, with the normalized
// applicant payload kept alongside for auditability.
type PredictionResponse struct {
	PredictionID uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey;column:prediction_id" json:"prediction_id"`
	ScenarioID   uuid.UUID      `gorm:"type:uuid;not null;index;column:scenario_id" json:"scenario_id"`
	ModelID      *uuid.UUID     `gorm:"type:uuid;column:model_id" json:"model_id,omitempty"`
	Result       bool           `gorm:"column:result;not null" json:"result"`
	Confidence   float64        `gorm:"column:confidence;not null" json:"confidence"`
	Applicant    datatypes.JSON `gorm:"column:applicant;type:jsonb" json:"applicant"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (PredictionResponse) TableName() string { return "prediction_responses" }
