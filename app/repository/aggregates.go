package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

type countRow struct {
	PlanID uint
	Total  int64
	Sum    int64
}

type countedTable struct {
	model  interface{}
	target map[uint]int64
}

// aggregates indexes grouped fact counts by plan id.
type aggregates struct {
	reviews     map[uint]countRow
	favorites   map[uint]int64
	clicks      map[uint]int64
	conversions map[uint]int64
}

func (a aggregates) stats(planID uint) models.PlanStats {
	r := a.reviews[planID]
	return models.PlanStats{
		PlanID:          planID,
		ReviewCount:     r.Total,
		RatingSum:       r.Sum,
		FavoriteCount:   a.favorites[planID],
		ClickCount:      a.clicks[planID],
		ConversionCount: a.conversions[planID],
	}
}

// loadAggregates runs one grouped query per fact table. planIDs nil means all plans.
// Click and conversion facts are only read when withClicks is set.
func loadAggregates(ctx context.Context, db *gorm.DB, planIDs []uint, withClicks bool) (aggregates, error) {
	agg := aggregates{
		reviews:     map[uint]countRow{},
		favorites:   map[uint]int64{},
		clicks:      map[uint]int64{},
		conversions: map[uint]int64{},
	}
	if planIDs != nil && len(planIDs) == 0 {
		return agg, nil
	}

	scope := func(model interface{}) *gorm.DB {
		q := db.WithContext(ctx).Model(model)
		if planIDs != nil {
			q = q.Where("plan_id IN ?", planIDs)
		}
		return q
	}

	var reviewRows []countRow
	if err := scope(&models.Review{}).
		Select("plan_id, COUNT(*) AS total, COALESCE(SUM(rating), 0) AS sum").
		Group("plan_id").Scan(&reviewRows).Error; err != nil {
		return agg, err
	}
	for _, row := range reviewRows {
		agg.reviews[row.PlanID] = row
	}

	counted := []countedTable{{&models.Favorite{}, agg.favorites}}
	if withClicks {
		counted = append(counted,
			countedTable{&models.PlanClick{}, agg.clicks},
			countedTable{&models.PlanConversion{}, agg.conversions},
		)
	}
	for _, c := range counted {
		var rows []countRow
		if err := scope(c.model).Select("plan_id, COUNT(*) AS total").Group("plan_id").Scan(&rows).Error; err != nil {
			return agg, err
		}
		for _, row := range rows {
			c.target[row.PlanID] = row.Total
		}
	}
	return agg, nil
}

// withStats attaches aggregates and the viewer's favorite state to plans, keeping their order.
func withStats(ctx context.Context, db *gorm.DB, plans []models.Plan, viewerID uint) ([]models.PlanListing, error) {
	listings := make([]models.PlanListing, 0, len(plans))
	if len(plans) == 0 {
		return listings, nil
	}

	ids := make([]uint, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
	}

	agg, err := loadAggregates(ctx, db, ids, false)
	if err != nil {
		return nil, err
	}

	favorited := map[uint]bool{}
	if viewerID != 0 {
		var favIDs []uint
		if err := db.WithContext(ctx).Model(&models.Favorite{}).
			Where("user_id = ? AND plan_id IN ?", viewerID, ids).
			Pluck("plan_id", &favIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range favIDs {
			favorited[id] = true
		}
	}

	for _, p := range plans {
		stats := agg.stats(p.ID)
		// display counters come from the plan row
		stats.ClickCount = p.ClickCount
		stats.ConversionCount = p.ConversionCount
		listings = append(listings, models.PlanListing{Plan: p, Stats: stats, IsFavorited: favorited[p.ID]})
	}
	return listings, nil
}
