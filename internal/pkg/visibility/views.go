package visibility

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/promotion"
)

// ProviderView is the provider part of every plan response.
type ProviderView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

// PlanSummary holds the fields every caller may see.
type PlanSummary struct {
	ID              uint            `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Provider        ProviderView    `json:"provider"`
	Price           decimal.Decimal `json:"price"`
	Fidelidade      int             `json:"fidelidade"`
	Categorias      []string        `json:"categorias"`
	IsSponsored     bool            `json:"is_sponsored"`
	SponsorPriority int             `json:"sponsor_priority"`
	promotion.Offer
	RankingScore    float64 `json:"ranking_score"`
	ClickCount      int64   `json:"click_count"`
	ConversionCount int64   `json:"conversion_count"`
	AvgRating       float64 `json:"avg_rating"`
	ReviewCount     int64   `json:"review_count"`
	FavoriteCount   int64   `json:"favorite_count"`
}

// PlanView is one entry of a plan listing: either a FullPlanView or a MaskedPlanView.
type PlanView interface {
	Summary() PlanSummary
	IsMasked() bool
}

// FullPlanView is what members see.
type FullPlanView struct {
	PlanSummary
	DownloadSpeed    int      `json:"download_speed"`
	UploadSpeed      int      `json:"upload_speed"`
	ServicosInclusos []string `json:"servicos_inclusos"`
	IndicadoPara     []string `json:"indicado_para"`
	Capacidade       string   `json:"capacidade"`
	IsFavorited      bool     `json:"is_favorited"`
}

func (v FullPlanView) Summary() PlanSummary { return v.PlanSummary }
func (v FullPlanView) IsMasked() bool       { return false }

// MaskedPlanView is what anonymous visitors see in listings. It has no technical
// fields at all; they only appear on the wire as null/empty placeholders.
type MaskedPlanView struct {
	PlanSummary
}

func (v MaskedPlanView) Summary() PlanSummary { return v.PlanSummary }
func (v MaskedPlanView) IsMasked() bool       { return true }

func (v MaskedPlanView) MarshalJSON() ([]byte, error) {
	type wire struct {
		PlanSummary
		DownloadSpeed    *int     `json:"download_speed"`
		UploadSpeed      *int     `json:"upload_speed"`
		ServicosInclusos []string `json:"servicos_inclusos"`
		IndicadoPara     []string `json:"indicado_para"`
		Capacidade       *string  `json:"capacidade"`
		IsFavorited      bool     `json:"is_favorited"`
		Masked           bool     `json:"_masked"`
	}
	return json.Marshal(wire{
		PlanSummary:      v.PlanSummary,
		ServicosInclusos: []string{},
		IndicadoPara:     []string{},
		Masked:           true,
	})
}

// ListResult is the response of a plan search.
type ListResult struct {
	Plans       []PlanView `json:"plans"`
	Total       int        `json:"total"`
	HiddenCount int        `json:"hidden_count"`
	IsLoggedIn  bool       `json:"is_logged_in"`
}

// ReviewView is a review as shown on the plan detail page.
type ReviewView struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"nota"`
	Comment   string    `json:"comentario"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// DetailView is a single plan page. For visitors it keeps the technical fields
// but carries only the first included service and the first review.
type DetailView struct {
	FullPlanView
	ViewCount int64        `json:"view_count"`
	Reviews   []ReviewView `json:"reviews"`
	Masked    bool         `json:"_masked,omitempty"`
}

// DetailResult is the response of a plan detail lookup.
type DetailResult struct {
	Plan         DetailView     `json:"plan"`
	ComparePlans []FullPlanView `json:"compare_plans"`
	IsLoggedIn   bool           `json:"is_logged_in"`
}
