package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

func ptr[T any](v T) *T { return &v }

func TestIsActive(t *testing.T) {
	now := time.Date(2025, 11, 28, 12, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("89.90")

	tests := []struct {
		name string
		plan *models.Plan
		want bool
	}{
		{"nil plan", nil, false},
		{"never set", &models.Plan{}, false},
		{"price without expiry", &models.Plan{PromotionPrice: &price}, false},
		{"expiry without price", &models.Plan{PromotionExpiresAt: ptr(now.Add(time.Hour))}, false},
		{"expired", &models.Plan{PromotionPrice: &price, PromotionExpiresAt: ptr(now.Add(-time.Second))}, false},
		{"expires exactly now", &models.Plan{PromotionPrice: &price, PromotionExpiresAt: ptr(now)}, false},
		{"running", &models.Plan{PromotionPrice: &price, PromotionExpiresAt: ptr(now.Add(time.Minute))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsActive(tt.plan, now))
		})
	}
}

func TestVisibleSuppressesStalePromotion(t *testing.T) {
	now := time.Date(2025, 11, 28, 12, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("89.90")
	plan := &models.Plan{
		PromotionPrice:     &price,
		PromotionExpiresAt: ptr(now.Add(-24 * time.Hour)),
		PromotionLabel:     ptr("Black Friday"),
	}

	offer := Visible(plan, now)
	assert.False(t, offer.Active())
	assert.Nil(t, offer.Price)
	assert.Nil(t, offer.ExpiresAt)
	assert.Nil(t, offer.Label)
}

func TestVisibleCopiesActivePromotion(t *testing.T) {
	now := time.Date(2025, 11, 28, 12, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("89.90")
	plan := &models.Plan{
		PromotionPrice:     &price,
		PromotionExpiresAt: ptr(now.Add(7 * 24 * time.Hour)),
		PromotionLabel:     ptr("Black Friday"),
	}

	offer := Visible(plan, now)
	assert.True(t, offer.Active())
	assert.True(t, offer.Price.Equal(price))
	assert.Equal(t, "Black Friday", *offer.Label)

	// the offer must not alias the stored plan
	*offer.Label = "changed"
	assert.Equal(t, "Black Friday", *plan.PromotionLabel)
}
