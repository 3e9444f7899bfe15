package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Provider is an internet service provider. Plans belong to exactly one provider;
// deleting a provider with plans is blocked by the foreign key.
type Provider struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name" validate:"required,min=2,max=120"`
	Slug      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug" validate:"required,min=2,max=120"`
	Logo      string    `gorm:"type:varchar(255)" json:"logo"`
	Color     string    `gorm:"type:varchar(20)" json:"color" validate:"omitempty,hexcolor"`
	Plans     []Plan    `gorm:"foreignKey:ProviderID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Provider) Validate() error {
	v := validator.New()
	return v.Struct(p)
}
