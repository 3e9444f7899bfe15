package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// ListPlans returns the user's favorited plans, most recently favorited first
func (r *favoriteRepository) ListPlans(ctx context.Context, userID uint) ([]models.PlanListing, error) {
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).
		Preload("Plan.Provider").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}

	plans := make([]models.Plan, 0, len(favorites))
	for _, f := range favorites {
		plans = append(plans, f.Plan)
	}
	return withStats(ctx, r.db, plans, userID)
}

func (r *favoriteRepository) Add(ctx context.Context, userID, planID uint) error {
	favorite := models.Favorite{UserID: userID, PlanID: planID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&favorite).Error
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, planID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND plan_id = ?", userID, planID).Delete(&models.Favorite{}).Error
}

func (r *favoriteRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
