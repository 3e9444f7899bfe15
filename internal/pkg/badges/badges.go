// Package badges awards achievement badges to users. Awarding is idempotent:
// a badge is granted at most once and never revoked.
package badges

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

const (
	earlyAdopterLimit   = 100
	specialistFavorites = 3
)

// Facts are the per-user counts badge rules look at.
type Facts struct {
	Searches   int64
	Reviews    int64
	Favorites  int64
	Referrals  int64
	TotalUsers int64
}

// Eligible lists every badge the facts qualify for, in a fixed order.
func Eligible(f Facts) []models.BadgeSlug {
	var out []models.BadgeSlug
	if f.Searches >= 1 {
		out = append(out, models.BadgeExplorer)
	}
	if f.TotalUsers > 0 && f.TotalUsers <= earlyAdopterLimit {
		out = append(out, models.BadgeEarlyAdopter)
	}
	if f.Reviews >= 1 {
		out = append(out, models.BadgeReviewer)
	}
	if f.Favorites >= specialistFavorites {
		out = append(out, models.BadgeSpecialist)
	}
	if f.Referrals >= 1 {
		out = append(out, models.BadgeAmbassador)
	}
	return out
}

type Store interface {
	UserFacts(ctx context.Context, userID uint) (Facts, error)
	ListSlugs(ctx context.Context, userID uint) ([]models.BadgeSlug, error)
	Award(ctx context.Context, userID uint, slugs []models.BadgeSlug) error
}

type Awarder struct {
	store Store
}

func NewAwarder(store Store) *Awarder {
	return &Awarder{store: store}
}

// Check grants the badges the user newly qualifies for and returns them.
func (a *Awarder) Check(ctx context.Context, userID uint) ([]models.BadgeSlug, error) {
	facts, err := a.store.UserFacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load badge facts: %w", err)
	}
	owned, err := a.store.ListSlugs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}

	have := make(map[models.BadgeSlug]struct{}, len(owned))
	for _, s := range owned {
		have[s] = struct{}{}
	}

	var award []models.BadgeSlug
	for _, s := range Eligible(facts) {
		if _, ok := have[s]; !ok {
			award = append(award, s)
		}
	}
	if len(award) == 0 {
		return nil, nil
	}

	if err := a.store.Award(ctx, userID, award); err != nil {
		return nil, fmt.Errorf("award badges: %w", err)
	}
	log.Infof("[Badges] User %d earned %v", userID, award)
	return award, nil
}

// CheckQuietly runs Check and only logs failures. Used after user actions
// where a badge problem must not fail the action itself.
func (a *Awarder) CheckQuietly(ctx context.Context, userID uint) {
	if a == nil {
		return
	}
	if _, err := a.Check(ctx, userID); err != nil {
		log.Warnf("[Badges] Check for user %d failed: %v", userID, err)
	}
}
