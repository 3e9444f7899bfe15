package visibility

import (
	"sort"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

// Less orders plans for listings: sponsored first, then sponsor priority,
// ranking score (both descending), price ascending and finally id ascending,
// which makes the order total and reproducible.
func Less(a, b *models.Plan) bool {
	if a.IsSponsored != b.IsSponsored {
		return a.IsSponsored
	}
	if a.SponsorPriority != b.SponsorPriority {
		return a.SponsorPriority > b.SponsorPriority
	}
	if a.RankingScore != b.RankingScore {
		return a.RankingScore > b.RankingScore
	}
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// SortListings sorts in place using Less.
func SortListings(listings []models.PlanListing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return Less(&listings[i].Plan, &listings[j].Plan)
	})
}
