package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

type providerRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

// UpsertBySlug inserts the provider or updates its branding; the ID is filled either way.
func (r *providerRepository) UpsertBySlug(ctx context.Context, provider *models.Provider) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "logo", "color", "updated_at"}),
	}).Create(provider).Error
	if err != nil {
		return err
	}
	// MySQL does not report the id of an updated row
	return r.db.WithContext(ctx).Model(&models.Provider{}).Where("slug = ?", provider.Slug).Select("id").Scan(&provider.ID).Error
}

func (r *providerRepository) List(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	err := r.db.WithContext(ctx).Order("name ASC").Find(&providers).Error
	return providers, err
}
