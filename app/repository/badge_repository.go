package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/badges"
)

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

// UserFacts counts everything the badge rules depend on
func (r *badgeRepository) UserFacts(ctx context.Context, userID uint) (badges.Facts, error) {
	var facts badges.Facts
	db := r.db.WithContext(ctx)

	counts := []struct {
		query  *gorm.DB
		target *int64
	}{
		{db.Model(&models.SearchHistory{}).Where("user_id = ?", userID), &facts.Searches},
		{db.Model(&models.Review{}).Where("user_id = ?", userID), &facts.Reviews},
		{db.Model(&models.Favorite{}).Where("user_id = ?", userID), &facts.Favorites},
		{db.Model(&models.User{}).Where("referred_by_id = ?", userID), &facts.Referrals},
		{db.Model(&models.User{}), &facts.TotalUsers},
	}
	for _, c := range counts {
		if err := c.query.Count(c.target).Error; err != nil {
			return badges.Facts{}, err
		}
	}
	return facts, nil
}

func (r *badgeRepository) ListSlugs(ctx context.Context, userID uint) ([]models.BadgeSlug, error) {
	var slugs []models.BadgeSlug
	err := r.db.WithContext(ctx).Model(&models.UserBadge{}).Where("user_id = ?", userID).Pluck("slug", &slugs).Error
	return slugs, err
}

// Award grants the badges, ignoring ones the user already holds
func (r *badgeRepository) Award(ctx context.Context, userID uint, slugs []models.BadgeSlug) error {
	if len(slugs) == 0 {
		return nil
	}
	rows := make([]models.UserBadge, 0, len(slugs))
	for _, s := range slugs {
		rows = append(rows, models.UserBadge{UserID: userID, Slug: s})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *badgeRepository) ListByUser(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var list []models.UserBadge
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("earned_at ASC, id ASC").Find(&list).Error
	return list, err
}
