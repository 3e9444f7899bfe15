package visibility

import (
	"math"
	"time"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/promotion"
)

const (
	// VisitorPlanLimit is the number of plans an anonymous search reveals.
	VisitorPlanLimit = 2
	// MemberReviewLimit caps the reviews shown on a plan page for members.
	MemberReviewLimit = 50
	// ComparePlanLimit is the number of alternative plans offered on a plan page.
	ComparePlanLimit = 2
)

// Caller is the authentication state of the requester.
type Caller struct {
	Authenticated bool
	UserID        uint
}

// Policy applies the gating rules. The clock is injected so promotion
// evaluation is deterministic in tests.
type Policy struct {
	now          func() time.Time
	visitorLimit int
}

// NewPolicy creates a policy using now as evaluation clock (time.Now when nil).
func NewPolicy(now func() time.Time) *Policy {
	if now == nil {
		now = time.Now
	}
	return &Policy{now: now, visitorLimit: VisitorPlanLimit}
}

// List sorts the candidates and produces the records the caller may observe.
// The input slice is not modified.
func (p *Policy) List(listings []models.PlanListing, caller Caller) ListResult {
	sorted := make([]models.PlanListing, len(listings))
	copy(sorted, listings)
	SortListings(sorted)

	visible := sorted
	hidden := 0
	if !caller.Authenticated && len(sorted) > p.visitorLimit {
		visible = sorted[:p.visitorLimit]
		hidden = len(sorted) - p.visitorLimit
	}

	now := p.now()
	views := make([]PlanView, 0, len(visible))
	for i := range visible {
		if caller.Authenticated {
			views = append(views, fullView(&visible[i], now))
		} else {
			views = append(views, MaskedPlanView{PlanSummary: summarize(&visible[i], now)})
		}
	}

	return ListResult{
		Plans:       views,
		Total:       len(sorted),
		HiddenCount: hidden,
		IsLoggedIn:  caller.Authenticated,
	}
}

// FullView renders a plan for a member context (favorites, recommendations).
func (p *Policy) FullView(listing models.PlanListing) FullPlanView {
	return fullView(&listing, p.now())
}

// Detail renders a single plan page. reviews must be ordered newest first and
// compare holds the alternative plans; both are trimmed according to the caller.
func (p *Policy) Detail(listing models.PlanListing, reviews []models.Review, compare []models.PlanListing, caller Caller) DetailResult {
	now := p.now()
	view := DetailView{
		FullPlanView: fullView(&listing, now),
		ViewCount:    listing.Plan.ViewCount,
	}

	limit := ReviewLimit(caller)
	if len(reviews) > limit {
		reviews = reviews[:limit]
	}
	view.Reviews = make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		view.Reviews = append(view.Reviews, ReviewView{
			ID:        r.ID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			Author:    r.User.Name,
			CreatedAt: r.CreatedAt,
		})
	}

	comparePlans := make([]FullPlanView, 0, ComparePlanLimit)
	if caller.Authenticated {
		for i := range compare {
			if len(comparePlans) == ComparePlanLimit {
				break
			}
			comparePlans = append(comparePlans, fullView(&compare[i], now))
		}
	} else {
		if len(view.ServicosInclusos) > 1 {
			view.ServicosInclusos = view.ServicosInclusos[:1]
		}
		view.IsFavorited = false
		view.Masked = true
	}

	return DetailResult{Plan: view, ComparePlans: comparePlans, IsLoggedIn: caller.Authenticated}
}

// ReviewLimit is the number of reviews worth fetching for a plan page.
func ReviewLimit(caller Caller) int {
	if caller.Authenticated {
		return MemberReviewLimit
	}
	return 1
}

// AverageRating is the mean review rating rounded to one decimal, 0 without reviews.
func AverageRating(stats models.PlanStats) float64 {
	return math.Round(stats.MeanRating()*10) / 10
}

func summarize(l *models.PlanListing, now time.Time) PlanSummary {
	plan := &l.Plan
	return PlanSummary{
		ID:   plan.ID,
		Slug: plan.Slug,
		Name: plan.Name,
		Provider: ProviderView{
			ID:    plan.Provider.ID,
			Name:  plan.Provider.Name,
			Slug:  plan.Provider.Slug,
			Color: plan.Provider.Color,
		},
		Price:           plan.Price,
		Fidelidade:      plan.Fidelidade,
		Categorias:      cloneStrings(plan.Categorias),
		IsSponsored:     plan.IsSponsored,
		SponsorPriority: plan.SponsorPriority,
		Offer:           promotion.Visible(plan, now),
		RankingScore:    plan.RankingScore,
		ClickCount:      plan.ClickCount,
		ConversionCount: plan.ConversionCount,
		AvgRating:       AverageRating(l.Stats),
		ReviewCount:     l.Stats.ReviewCount,
		FavoriteCount:   l.Stats.FavoriteCount,
	}
}

func fullView(l *models.PlanListing, now time.Time) FullPlanView {
	return FullPlanView{
		PlanSummary:      summarize(l, now),
		DownloadSpeed:    l.Plan.DownloadSpeed,
		UploadSpeed:      l.Plan.UploadSpeed,
		ServicosInclusos: cloneStrings(l.Plan.ServicosInclusos),
		IndicadoPara:     cloneStrings(l.Plan.IndicadoPara),
		Capacidade:       l.Plan.Capacidade,
		IsFavorited:      l.IsFavorited,
	}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
