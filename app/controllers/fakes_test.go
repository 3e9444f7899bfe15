package controllers

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/app/repository"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/badges"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/jobqueue"
)

// fakePlans is an in-memory catalog. Favorites are read from favs so the
// IsFavorited flag follows the favorite endpoints.
type fakePlans struct {
	mu     sync.Mutex
	plans  map[uint]*models.Plan
	favs   *fakeFavorites
	clicks []models.PlanClick
	leads  []models.Lead
}

func newFakePlans(favs *fakeFavorites, plans ...models.Plan) *fakePlans {
	f := &fakePlans{plans: map[uint]*models.Plan{}, favs: favs}
	for i := range plans {
		p := plans[i]
		f.plans[p.ID] = &p
	}
	favs.plans = f
	return f
}

func (f *fakePlans) listing(p *models.Plan, viewerID uint) models.PlanListing {
	return models.PlanListing{
		Plan:        *p,
		Stats:       models.PlanStats{PlanID: p.ID},
		IsFavorited: viewerID != 0 && f.favs.has(viewerID, p.ID),
	}
}

func (f *fakePlans) GetByID(_ context.Context, id uint) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok || !p.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlans) Search(_ context.Context, filter repository.PlanFilter, viewerID uint) ([]models.PlanListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uint, 0, len(f.plans))
	for id := range f.plans {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.PlanListing
	for _, id := range ids {
		p := f.plans[id]
		if !p.IsActive {
			continue
		}
		if filter.CepPrefix != "" && !slices.Contains(p.CepsAtendidos, filter.CepPrefix) {
			continue
		}
		if filter.Category != "" && filter.Category != repository.AllCategories && !p.HasCategory(filter.Category) {
			continue
		}
		out = append(out, f.listing(p, viewerID))
	}
	return out, nil
}

func (f *fakePlans) GetListing(_ context.Context, id uint, viewerID uint) (*models.PlanListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok || !p.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	l := f.listing(p, viewerID)
	return &l, nil
}

func (f *fakePlans) Compare(ctx context.Context, plan *models.Plan, limit int, viewerID uint) ([]models.PlanListing, error) {
	all, _ := f.Search(ctx, repository.PlanFilter{}, viewerID)
	var out []models.PlanListing
	for _, l := range all {
		if l.Plan.ID != plan.ID && len(out) < limit {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakePlans) RecordClick(_ context.Context, click *models.PlanClick) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, *click)
	f.plans[click.PlanID].ClickCount++
	return nil
}

func (f *fakePlans) RecordConversion(_ context.Context, lead *models.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead.ID = uint(len(f.leads) + 1)
	lead.UUID = uuid.NewString()
	f.leads = append(f.leads, *lead)
	f.plans[lead.PlanID].ConversionCount++
	return nil
}

func (f *fakePlans) ListEngagement(context.Context) ([]models.PlanStats, error) { return nil, nil }

func (f *fakePlans) UpdateRanking(context.Context, uint, float64, int64, int64) error { return nil }

func (f *fakePlans) UpsertBySlug(context.Context, *models.Plan) error { return nil }

type fakeReviews struct {
	mu      sync.Mutex
	reviews []models.Review
}

func (f *fakeReviews) Create(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.UserID == review.UserID && r.PlanID == review.PlanID {
			return repository.ErrAlreadyReviewed
		}
	}
	review.ID = uint(len(f.reviews) + 1)
	review.CreatedAt = time.Now()
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeReviews) ListByPlan(_ context.Context, planID uint, limit int) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for i := len(f.reviews) - 1; i >= 0 && len(out) < limit; i-- {
		if f.reviews[i].PlanID == planID {
			out = append(out, f.reviews[i])
		}
	}
	return out, nil
}

func (f *fakeReviews) CountByUser(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reviews {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

type favKey struct{ user, plan uint }

type fakeFavorites struct {
	mu    sync.Mutex
	set   map[favKey]bool
	plans *fakePlans
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{set: map[favKey]bool{}}
}

func (f *fakeFavorites) has(userID, planID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set[favKey{userID, planID}]
}

func (f *fakeFavorites) ListPlans(ctx context.Context, userID uint) ([]models.PlanListing, error) {
	all, _ := f.plans.Search(ctx, repository.PlanFilter{}, userID)
	var out []models.PlanListing
	for _, l := range all {
		if l.IsFavorited {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeFavorites) Add(_ context.Context, userID, planID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set[favKey{userID, planID}] = true
	return nil
}

func (f *fakeFavorites) Remove(_ context.Context, userID, planID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.set, favKey{userID, planID})
	return nil
}

func (f *fakeFavorites) CountByUser(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.set {
		if k.user == userID {
			n++
		}
	}
	return n, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uint]models.UserProfile
}

func (f *fakeProfiles) Upsert(_ context.Context, profile *models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profiles == nil {
		f.profiles = map[uint]models.UserProfile{}
	}
	f.profiles[profile.UserID] = *profile
	return nil
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID uint) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []models.SearchHistory
}

func (f *fakeHistory) Create(_ context.Context, entry *models.SearchHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = uint(len(f.entries) + 1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistory) RecentDistinct(_ context.Context, userID uint, limit int) ([]models.SearchHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []models.SearchHistory
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.entries[i]
		if e.UserID != userID || seen[e.Cep] {
			continue
		}
		seen[e.Cep] = true
		out = append(out, e)
	}
	return out, nil
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []models.PriceAlert
	nextID uint
}

func (f *fakeAlerts) ListByUser(_ context.Context, userID uint) ([]models.PriceAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PriceAlert
	for i := len(f.alerts) - 1; i >= 0; i-- {
		if f.alerts[i].UserID == userID {
			out = append(out, f.alerts[i])
		}
	}
	return out, nil
}

func (f *fakeAlerts) Create(_ context.Context, alert *models.PriceAlert, maxActive int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	active := 0
	for _, a := range f.alerts {
		if a.UserID == alert.UserID && a.IsActive {
			active++
		}
	}
	if active >= maxActive {
		return repository.ErrAlertLimitReached
	}
	f.nextID++
	alert.ID = f.nextID
	alert.IsActive = true
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeAlerts) Delete(_ context.Context, id, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.alerts {
		if a.ID == id && a.UserID == userID {
			f.alerts = append(f.alerts[:i], f.alerts[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []models.Event
}

func (f *fakeEvents) Create(_ context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailAlreadyExists
		}
	}
	user.ID = uint(len(f.users) + 1)
	user.CreatedAt = time.Now()
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].LastLoginAt = &at
		}
	}
	return nil
}

func (f *fakeUsers) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeViews struct {
	mu    sync.Mutex
	views []uint
}

func (f *fakeViews) AddPlanView(_ context.Context, planID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, planID)
	return nil
}

type fakeJobs struct {
	err      error
	enqueued []uint
}

func (f *fakeJobs) EnqueueRankingRecompute(requestedBy uint, reason string) (*jobqueue.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.enqueued = append(f.enqueued, requestedBy)
	return &jobqueue.Job{ID: "job-1", Type: jobqueue.JobTypeRankingRecompute, Status: jobqueue.JobStatusPending}, nil
}

func (f *fakeJobs) GetJobStats(context.Context) (map[jobqueue.JobStatus]int64, error) {
	return map[jobqueue.JobStatus]int64{jobqueue.JobStatusCompleted: 3}, nil
}

func (f *fakeJobs) GetQueueSize(context.Context) (int64, error) { return 1, nil }

// fakeBadges derives the badge facts from the other fakes
type fakeBadges struct {
	mu      sync.Mutex
	earned  map[uint][]models.BadgeSlug
	history *fakeHistory
	reviews *fakeReviews
	favs    *fakeFavorites
}

func (f *fakeBadges) UserFacts(ctx context.Context, userID uint) (badges.Facts, error) {
	recent, _ := f.history.RecentDistinct(ctx, userID, 1000)
	reviews, _ := f.reviews.CountByUser(ctx, userID)
	favorites, _ := f.favs.CountByUser(ctx, userID)
	return badges.Facts{
		Searches:   int64(len(recent)),
		Reviews:    reviews,
		Favorites:  favorites,
		TotalUsers: 10000,
	}, nil
}

func (f *fakeBadges) ListSlugs(_ context.Context, userID uint) ([]models.BadgeSlug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.BadgeSlug(nil), f.earned[userID]...), nil
}

func (f *fakeBadges) Award(_ context.Context, userID uint, slugs []models.BadgeSlug) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.earned == nil {
		f.earned = map[uint][]models.BadgeSlug{}
	}
	f.earned[userID] = append(f.earned[userID], slugs...)
	return nil
}

func (f *fakeBadges) ListByUser(_ context.Context, userID uint) ([]models.UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserBadge
	for _, s := range f.earned[userID] {
		out = append(out, models.UserBadge{UserID: userID, Slug: s})
	}
	return out, nil
}
