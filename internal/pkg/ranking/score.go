// Package ranking computes the global 0..100 ranking score of every plan from
// its engagement and persists it in batch.
package ranking

import "math"

// Weights of the four score components. They sum to MaxScore.
const (
	ratingWeight     = 40.0
	conversionWeight = 30.0
	clickWeight      = 20.0
	favoriteWeight   = 10.0

	// engagement at which a component saturates
	conversionCap = 10.0
	clickCap      = 100.0
	favoriteCap   = 20.0

	maxRating = 5.0
	MaxScore  = 100.0
)

// Signals are the engagement aggregates of a single plan.
type Signals struct {
	AvgRating   float64
	Conversions int64
	Clicks      int64
	Favorites   int64
}

// Score returns the weighted ranking score, always within [0, MaxScore].
func Score(s Signals) float64 {
	score := clamp(s.AvgRating/maxRating, 0, 1)*ratingWeight +
		saturate(s.Conversions, conversionCap)*conversionWeight +
		saturate(s.Clicks, clickCap)*clickWeight +
		saturate(s.Favorites, favoriteCap)*favoriteWeight
	return clamp(score, 0, MaxScore)
}

func saturate(n int64, limit float64) float64 {
	return clamp(float64(n)/limit, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
