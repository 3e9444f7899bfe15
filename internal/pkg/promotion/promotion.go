// Package promotion decides whether a plan's discounted price may be shown.
// It is evaluated when a response is built, so an expired promotion turns
// itself off without any background job.
package promotion

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

// Offer is the promotion part of a plan response. The zero value means no promotion.
type Offer struct {
	Price     *decimal.Decimal `json:"promotion_price"`
	ExpiresAt *time.Time       `json:"promotion_expires_at"`
	Label     *string          `json:"promotion_label"`
}

// IsActive reports whether the plan has a promotion price and an expiry strictly after now.
// Partial data (price without expiry or the reverse) is never active.
func IsActive(plan *models.Plan, now time.Time) bool {
	if plan == nil || plan.PromotionPrice == nil || plan.PromotionExpiresAt == nil {
		return false
	}
	return plan.PromotionExpiresAt.After(now)
}

// Visible returns the offer a caller may see. Inactive promotions yield the zero
// Offer regardless of what is stored.
func Visible(plan *models.Plan, now time.Time) Offer {
	if !IsActive(plan, now) {
		return Offer{}
	}
	price := *plan.PromotionPrice
	expires := *plan.PromotionExpiresAt
	offer := Offer{Price: &price, ExpiresAt: &expires}
	if plan.PromotionLabel != nil {
		label := *plan.PromotionLabel
		offer.Label = &label
	}
	return offer
}

// Active reports whether the offer carries any promotion data.
func (o Offer) Active() bool {
	return o.Price != nil
}
