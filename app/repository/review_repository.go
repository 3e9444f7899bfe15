package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND plan_id = ?", review.UserID, review.PlanID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return ErrAlreadyReviewed
	}

	err := r.db.WithContext(ctx).Create(review).Error
	// concurrent submit lost the race against the unique index
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyReviewed
	}
	return err
}

func (r *reviewRepository) ListByPlan(ctx context.Context, planID uint, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("plan_id = ?", planID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
