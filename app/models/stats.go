package models

// PlanStats holds engagement aggregates derived from the fact tables
// (reviews, favorites, plan_clicks, plan_conversions). Not a table.
type PlanStats struct {
	PlanID          uint  `json:"plan_id"`
	ReviewCount     int64 `json:"review_count"`
	RatingSum       int64 `json:"-"`
	FavoriteCount   int64 `json:"favorite_count"`
	ClickCount      int64 `json:"-"`
	ConversionCount int64 `json:"-"`
}

// MeanRating is the unrounded arithmetic mean of review ratings, 0 without reviews.
func (s PlanStats) MeanRating() float64 {
	if s.ReviewCount <= 0 {
		return 0
	}
	return float64(s.RatingSum) / float64(s.ReviewCount)
}

// PlanListing is a plan together with its aggregates and the caller's favorite state,
// the unit consumed by the visibility policy and the recommendation engine.
type PlanListing struct {
	Plan        Plan
	Stats       PlanStats
	IsFavorited bool
}
