package models

import (
	"time"
)

// Favorite marks a plan as favorited by a user. Presence is the only state.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_favorite_user_plan" json:"user_id"`
	PlanID    uint      `gorm:"uniqueIndex:idx_favorite_user_plan;index" json:"plan_id"`
	Plan      Plan      `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
