package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

func TestAggregatesStats(t *testing.T) {
	agg := aggregates{
		reviews:     map[uint]countRow{1: {PlanID: 1, Total: 3, Sum: 14}},
		favorites:   map[uint]int64{1: 5, 2: 1},
		clicks:      map[uint]int64{1: 40},
		conversions: map[uint]int64{2: 2},
	}

	assert.Equal(t, models.PlanStats{PlanID: 1, ReviewCount: 3, RatingSum: 14, FavoriteCount: 5, ClickCount: 40}, agg.stats(1))
	assert.Equal(t, models.PlanStats{PlanID: 2, FavoriteCount: 1, ConversionCount: 2}, agg.stats(2))
	assert.Equal(t, models.PlanStats{PlanID: 3}, agg.stats(3))
}
