package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

type searchHistoryRepository struct {
	db *gorm.DB
}

func NewSearchHistoryRepository(db *gorm.DB) SearchHistoryRepository {
	return &searchHistoryRepository{db: db}
}

func (r *searchHistoryRepository) Create(ctx context.Context, entry *models.SearchHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *searchHistoryRepository) RecentDistinct(ctx context.Context, userID uint, limit int) ([]models.SearchHistory, error) {
	latestPerCep := r.db.Model(&models.SearchHistory{}).
		Select("MAX(id)").
		Where("user_id = ?", userID).
		Group("cep")

	var entries []models.SearchHistory
	err := r.db.WithContext(ctx).
		Where("id IN (?)", latestPerCep).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
