package models

import "time"

// Review is immutable once created; at most one per (user, plan).
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_review_user_plan" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PlanID    uint      `gorm:"uniqueIndex:idx_review_user_plan;index" json:"plan_id"`
	Rating    int       `gorm:"not null" json:"nota"`
	Comment   string    `gorm:"type:text" json:"comentario"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
