package types

import (
	"time"

	"github.com/google/uuid"
)

// Scenario is a named prediction use-case with zero or more candidate models.
type Scenario struct {
	ScenarioID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey;column:scenario_id" json:"scenario_id"`
	ScenarioName string    `gorm:"not null;column:scenario_name" json:"scenario_name"`
	Description  string    `gorm:"column:description" json:"description"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Scenario) TableName() string { return "scenarios" }
