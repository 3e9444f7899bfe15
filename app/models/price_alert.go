package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const MaxActiveAlertsPerUser = 5

type PriceAlert struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"index" json:"user_id"`
	PlanID    *uint           `gorm:"index" json:"plan_id"`
	Plan      *Plan           `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Cep       string          `gorm:"type:varchar(5);not null" json:"cep"`
	MaxPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"max_price"`
	MinSpeed  *int            `gorm:"default:null" json:"min_speed"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
