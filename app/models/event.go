package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event is one analytics fact. Payload is free-form JSON.
type Event struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Type      string            `gorm:"type:varchar(40);index;not null" json:"type"`
	UserID    *uint             `gorm:"index" json:"user_id"`
	SessionID *string           `gorm:"type:varchar(64)" json:"session_id"`
	Payload   datatypes.JSONMap `gorm:"type:json" json:"payload"`
	IP        *string           `gorm:"type:varchar(45)" json:"-"`
	UserAgent *string           `gorm:"type:varchar(255)" json:"-"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}
