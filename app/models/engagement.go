package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanClick is one outbound click on a plan card.
type PlanClick struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlanID    uint      `gorm:"index" json:"plan_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	SessionID *string   `gorm:"type:varchar(64)" json:"session_id"`
	IP        string    `gorm:"type:varchar(45);default:null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PlanConversion is one captured lead counted against a plan.
type PlanConversion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlanID    uint      `gorm:"index" json:"plan_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	LeadID    uint      `gorm:"index" json:"lead_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	LEAD_STATUS_NEW       = "new"
	LEAD_STATUS_CONTACTED = "contacted"
)

// Lead is a contact request ("hire") forwarded to the plan's provider.
type Lead struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UUID      string    `gorm:"type:char(36);uniqueIndex;not null" json:"id"`
	PlanID    uint      `gorm:"index" json:"plan_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(20);not null" json:"phone"`
	Cep       string    `gorm:"type:varchar(9);not null" json:"cep"`
	Status    string    `gorm:"type:varchar(20);default:'new'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == "" {
		l.UUID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = LEAD_STATUS_NEW
	}
	return nil
}
