package types

import (
	"time"

	"github.com/google/uuid"
)

// ScenarioModel links a candidate model to a scenario. At most one link per
// scenario may be active; the activation sequence is the only writer that
// flips IsActive, there is no database constraint backing the invariant.
type ScenarioModel struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ScenarioID uuid.UUID `gorm:"type:uuid;not null;index;column:scenario_id" json:"scenario_id"`
	ModelID    uuid.UUID `gorm:"type:uuid;not null;index;column:model_id" json:"model_id"`
	IsActive   bool      `gorm:"column:is_active;not null;default:false" json:"is_active"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ScenarioModel) TableName() string { return "scenario_models" }
