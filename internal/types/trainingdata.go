package types

import (
	"time"

	"github.com/google/uuid"
)

type TrainingData struct {
	TrainingDataID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey;column:model_training_data_id" json:"model_training_data_id"`
	Name           string    `gorm:"not null;column:model_training_data_name" json:"model_training_data_name"`
	URL            string    `gorm:"column:model_training_data_url" json:"model_training_data_url"`
	UsedStatus     bool      `gorm:"column:used_status;not null;default:false" json:"used_status"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (TrainingData) TableName() string { return "training_data" }
