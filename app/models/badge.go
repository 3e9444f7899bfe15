package models

import "time"

type BadgeSlug string

const (
	BadgeExplorer     BadgeSlug = "EXPLORER"
	BadgeEarlyAdopter BadgeSlug = "EARLY_ADOPTER"
	BadgeReviewer     BadgeSlug = "REVIEWER"
	BadgeSpecialist   BadgeSlug = "SPECIALIST"
	BadgeAmbassador   BadgeSlug = "AMBASSADOR"
)

type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"uniqueIndex:idx_badge_user_slug" json:"user_id"`
	Slug     BadgeSlug `gorm:"type:varchar(40);uniqueIndex:idx_badge_user_slug" json:"slug"`
	EarnedAt time.Time `gorm:"autoCreateTime" json:"earned_at"`
}
