package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/badges"
)

var (
	ErrAlreadyReviewed    = errors.New("plan already reviewed by this user")
	ErrAlertLimitReached  = errors.New("active price alert limit reached")
	ErrEmailAlreadyExists = errors.New("email already registered")
)

// AllCategories is the category filter value that disables category filtering.
const AllCategories = "Todos"

// PlanFilter narrows a plan search. Empty fields do not filter.
type PlanFilter struct {
	CepPrefix string
	Category  string
}

// PlanRepository defines the interface for plan-related database operations
type PlanRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Plan, error)
	// Search returns active plans with aggregates; viewerID 0 means anonymous.
	Search(ctx context.Context, filter PlanFilter, viewerID uint) ([]models.PlanListing, error)
	GetListing(ctx context.Context, id uint, viewerID uint) (*models.PlanListing, error)
	// Compare returns other active plans sharing a category with plan, best ranked first.
	Compare(ctx context.Context, plan *models.Plan, limit int, viewerID uint) ([]models.PlanListing, error)
	RecordClick(ctx context.Context, click *models.PlanClick) error
	RecordConversion(ctx context.Context, lead *models.Lead) error
	ListEngagement(ctx context.Context) ([]models.PlanStats, error)
	UpdateRanking(ctx context.Context, planID uint, score float64, clicks, conversions int64) error
	UpsertBySlug(ctx context.Context, plan *models.Plan) error
}

// ProviderRepository defines the interface for provider-related database operations
type ProviderRepository interface {
	UpsertBySlug(ctx context.Context, provider *models.Provider) error
	List(ctx context.Context) ([]models.Provider, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

// ReviewRepository defines the interface for review-related database operations
type ReviewRepository interface {
	// Create fails with ErrAlreadyReviewed when the user already reviewed the plan.
	Create(ctx context.Context, review *models.Review) error
	// ListByPlan returns the newest reviews first, with their authors.
	ListByPlan(ctx context.Context, planID uint, limit int) ([]models.Review, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// FavoriteRepository defines the interface for favorite-related database operations
type FavoriteRepository interface {
	ListPlans(ctx context.Context, userID uint) ([]models.PlanListing, error)
	// Add is idempotent.
	Add(ctx context.Context, userID, planID uint) error
	Remove(ctx context.Context, userID, planID uint) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// ProfileRepository stores the latest questionnaire submission per user.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.UserProfile) error
	GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error)
}

type SearchHistoryRepository interface {
	Create(ctx context.Context, entry *models.SearchHistory) error
	// RecentDistinct returns the latest search per CEP, newest first.
	RecentDistinct(ctx context.Context, userID uint, limit int) ([]models.SearchHistory, error)
}

type AlertRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.PriceAlert, error)
	// Create fails with ErrAlertLimitReached when the user already has maxActive active alerts.
	Create(ctx context.Context, alert *models.PriceAlert, maxActive int) error
	Delete(ctx context.Context, id, userID uint) (int64, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
}

type BadgeRepository interface {
	badges.Store
	ListByUser(ctx context.Context, userID uint) ([]models.UserBadge, error)
}

// StatsRepository runs the COUNT queries behind the landing page numbers.
type StatsRepository interface {
	CountActivePlans(ctx context.Context) (int64, error)
	CountProviders(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountLeadsSince(ctx context.Context, since time.Time) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User          UserRepository
	Provider      ProviderRepository
	Plan          PlanRepository
	Review        ReviewRepository
	Favorite      FavoriteRepository
	Profile       ProfileRepository
	SearchHistory SearchHistoryRepository
	Alert         AlertRepository
	Event         EventRepository
	Badge         BadgeRepository
	Stats         StatsRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Provider:      NewProviderRepository(db),
		Plan:          NewPlanRepository(db),
		Review:        NewReviewRepository(db),
		Favorite:      NewFavoriteRepository(db),
		Profile:       NewProfileRepository(db),
		SearchHistory: NewSearchHistoryRepository(db),
		Alert:         NewAlertRepository(db),
		Event:         NewEventRepository(db),
		Badge:         NewBadgeRepository(db),
		Stats:         NewStatsRepository(db),
	}
}
