package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Plan is a purchasable internet offering. Speeds are in Mbps, prices are monthly BRL.
type Plan struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Slug          string          `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug" validate:"required,min=2,max=120"`
	Name          string          `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	ProviderID    uint            `gorm:"index;not null" json:"provider_id"`
	Provider      Provider        `gorm:"foreignKey:ProviderID" json:"provider" validate:"-"`
	DownloadSpeed int             `gorm:"not null" json:"download_speed" validate:"gte=0"`
	UploadSpeed   int             `gorm:"not null" json:"upload_speed" validate:"gte=0"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Fidelidade    int             `gorm:"default:0" json:"fidelidade" validate:"gte=0"`
	Capacidade    string          `gorm:"type:varchar(50)" json:"capacidade"`

	ServicosInclusos datatypes.JSONSlice[string] `gorm:"type:json" json:"servicos_inclusos"`
	IndicadoPara     datatypes.JSONSlice[string] `gorm:"type:json" json:"indicado_para"`
	Categorias       datatypes.JSONSlice[string] `gorm:"type:json" json:"categorias"`
	CepsAtendidos    datatypes.JSONSlice[string] `gorm:"type:json" json:"-"`

	IsActive        bool `gorm:"default:true;index" json:"is_active"`
	IsSponsored     bool `gorm:"default:false" json:"is_sponsored"`
	SponsorPriority int  `gorm:"default:0" json:"sponsor_priority"`

	// promotion fields are either all unset or at least price+expiry set
	PromotionPrice     *decimal.Decimal `gorm:"type:decimal(10,2);default:null" json:"promotion_price"`
	PromotionExpiresAt *time.Time       `gorm:"type:datetime;default:null" json:"promotion_expires_at"`
	PromotionLabel     *string          `gorm:"type:varchar(60);default:null" json:"promotion_label"`

	RankingScore    float64   `gorm:"default:0;index" json:"ranking_score"`
	ViewCount       int64     `gorm:"default:0" json:"view_count"`
	ClickCount      int64     `gorm:"default:0" json:"click_count"`
	ConversionCount int64     `gorm:"default:0" json:"conversion_count"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Plan) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// HasCategory reports whether the plan is tagged with the given category.
func (p *Plan) HasCategory(category string) bool {
	for _, c := range p.Categorias {
		if c == category {
			return true
		}
	}
	return false
}
