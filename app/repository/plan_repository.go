package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

const listingOrder = "is_sponsored DESC, sponsor_priority DESC, ranking_score DESC, price ASC, id ASC"

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// GetByID retrieves an active plan by its ID
func (r *planRepository) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).Preload("Provider").Where("is_active = ?", true).First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Search finds active plans by CEP prefix and category
func (r *planRepository) Search(ctx context.Context, filter PlanFilter, viewerID uint) ([]models.PlanListing, error) {
	query := r.db.WithContext(ctx).Preload("Provider").Where("is_active = ?", true)
	if filter.CepPrefix != "" {
		query = query.Where("JSON_CONTAINS(ceps_atendidos, JSON_QUOTE(?))", filter.CepPrefix)
	}
	if filter.Category != "" && filter.Category != AllCategories {
		query = query.Where("JSON_CONTAINS(categorias, JSON_QUOTE(?))", filter.Category)
	}

	var plans []models.Plan
	if err := query.Order(listingOrder).Find(&plans).Error; err != nil {
		return nil, err
	}
	return withStats(ctx, r.db, plans, viewerID)
}

// GetListing retrieves one active plan with its aggregates
func (r *planRepository) GetListing(ctx context.Context, id uint, viewerID uint) (*models.PlanListing, error) {
	plan, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	listings, err := withStats(ctx, r.db, []models.Plan{*plan}, viewerID)
	if err != nil {
		return nil, err
	}
	return &listings[0], nil
}

// Compare returns alternatives sharing at least one category with plan
func (r *planRepository) Compare(ctx context.Context, plan *models.Plan, limit int, viewerID uint) ([]models.PlanListing, error) {
	if plan == nil || len(plan.Categorias) == 0 || limit <= 0 {
		return []models.PlanListing{}, nil
	}

	shared := r.db.Where("JSON_CONTAINS(categorias, JSON_QUOTE(?))", plan.Categorias[0])
	for _, c := range plan.Categorias[1:] {
		shared = shared.Or("JSON_CONTAINS(categorias, JSON_QUOTE(?))", c)
	}

	var plans []models.Plan
	err := r.db.WithContext(ctx).
		Preload("Provider").
		Where("is_active = ? AND id <> ?", true, plan.ID).
		Where(shared).
		Order("ranking_score DESC, id ASC").
		Limit(limit).
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return withStats(ctx, r.db, plans, viewerID)
}

// RecordClick stores the click fact and bumps the plan counter atomically
func (r *planRepository) RecordClick(ctx context.Context, click *models.PlanClick) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(click).Error; err != nil {
			return err
		}
		return tx.Model(&models.Plan{}).Where("id = ?", click.PlanID).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
	})
}

// RecordConversion stores the lead, its conversion fact and bumps the plan counter atomically
func (r *planRepository) RecordConversion(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		conversion := models.PlanConversion{PlanID: lead.PlanID, UserID: lead.UserID, LeadID: lead.ID}
		if err := tx.Create(&conversion).Error; err != nil {
			return err
		}
		return tx.Model(&models.Plan{}).Where("id = ?", lead.PlanID).
			UpdateColumn("conversion_count", gorm.Expr("conversion_count + ?", 1)).Error
	})
}

// ListEngagement aggregates the fact tables for every plan, active or not
func (r *planRepository) ListEngagement(ctx context.Context) ([]models.PlanStats, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Plan{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	agg, err := loadAggregates(ctx, r.db, nil, true)
	if err != nil {
		return nil, err
	}

	stats := make([]models.PlanStats, 0, len(ids))
	for _, id := range ids {
		stats = append(stats, agg.stats(id))
	}
	return stats, nil
}

// UpdateRanking writes the score and the display counters in a single statement
func (r *planRepository) UpdateRanking(ctx context.Context, planID uint, score float64, clicks, conversions int64) error {
	return r.db.WithContext(ctx).Model(&models.Plan{}).Where("id = ?", planID).UpdateColumns(map[string]interface{}{
		"ranking_score":    score,
		"click_count":      clicks,
		"conversion_count": conversions,
	}).Error
}

// UpsertBySlug inserts the plan or refreshes the catalog fields of an existing one.
// Engagement counters and the ranking score are left untouched.
func (r *planRepository) UpsertBySlug(ctx context.Context, plan *models.Plan) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "provider_id", "download_speed", "upload_speed", "price", "fidelidade",
			"capacidade", "servicos_inclusos", "indicado_para", "categorias", "ceps_atendidos",
			"is_active", "is_sponsored", "sponsor_priority",
			"promotion_price", "promotion_expires_at", "promotion_label", "updated_at",
		}),
	}).Create(plan).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.Plan{}).Where("slug = ?", plan.Slug).Select("id").Scan(&plan.ID).Error
}
