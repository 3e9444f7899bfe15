package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) ListByUser(ctx context.Context, userID uint) ([]models.PriceAlert, error) {
	var alerts []models.PriceAlert
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&alerts).Error
	return alerts, err
}

func (r *alertRepository) Create(ctx context.Context, alert *models.PriceAlert, maxActive int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the user's alert rows so two requests cannot both pass the limit
		var active []uint
		if err := tx.Model(&models.PriceAlert{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND is_active = ?", alert.UserID, true).
			Pluck("id", &active).Error; err != nil {
			return err
		}
		if len(active) >= maxActive {
			return ErrAlertLimitReached
		}
		alert.IsActive = true
		return tx.Create(alert).Error
	})
}

// Delete removes an alert owned by userID and reports how many rows went away
func (r *alertRepository) Delete(ctx context.Context, id, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.PriceAlert{})
	return result.RowsAffected, result.Error
}
