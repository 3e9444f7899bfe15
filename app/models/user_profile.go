package models

import (
	"time"

	"gorm.io/datatypes"
)

const MaxHouseholdSize = 20

// UserProfile is the latest questionnaire submission of a user. Each submission
// replaces the previous one in full.
type UserProfile struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	UserID        uint                        `gorm:"uniqueIndex" json:"user_id"`
	HouseholdSize int                         `gorm:"not null" json:"pessoas"`
	Devices       datatypes.JSONSlice[string] `gorm:"type:json" json:"dispositivos"`
	Activities    datatypes.JSONSlice[string] `gorm:"type:json" json:"atividades"`
	CurrentSpeed  *int                        `gorm:"default:null" json:"velocidade_atual"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}
