// Package recommend scores how well a plan fits a household questionnaire.
//
// The compatibility score is a plain sum of per-activity and household terms.
// It has no upper bound: a plan that fits more of the stated activities scores
// higher. It is only meant for ordering plans within one request.
package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ManuelReschke/PlanoCerto/app/models"
)

var ErrInvalidHousehold = errors.New("household size must be at least 1")

// ConfigurationError reports a profile the engine cannot score.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("recommend: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Profile is the part of a questionnaire relevant for scoring.
type Profile struct {
	HouseholdSize int
	Activities    []string
}

// Scored is a plan listing with its compatibility score.
type Scored struct {
	Listing models.PlanListing
	Score   int
}

type Engine struct {
	table Table
}

// NewEngine creates an engine; a nil table falls back to DefaultTable.
func NewEngine(table Table) *Engine {
	if table == nil {
		table = DefaultTable()
	}
	return &Engine{table: table}
}

// Score computes the compatibility of plan with profile.
func (e *Engine) Score(plan *models.Plan, p Profile) (int, error) {
	if p.HouseholdSize <= 0 {
		return 0, &ConfigurationError{Field: "household size", Err: ErrInvalidHousehold}
	}

	score := 0
	for _, name := range p.Activities {
		activity, ok := e.table[name]
		if !ok {
			continue
		}
		score += activityScore(plan, activity)
	}

	score += householdScore(plan.DownloadSpeed, p.HouseholdSize)
	score += efficiencyScore(plan)
	return score, nil
}

// Rank scores every listing and orders them by descending score. Equal scores
// keep their input order.
func (e *Engine) Rank(listings []models.PlanListing, p Profile) ([]Scored, error) {
	if p.HouseholdSize <= 0 {
		return nil, &ConfigurationError{Field: "household size", Err: ErrInvalidHousehold}
	}
	scored := make([]Scored, 0, len(listings))
	for i := range listings {
		s, err := e.Score(&listings[i].Plan, p)
		if err != nil {
			return nil, err
		}
		scored = append(scored, Scored{Listing: listings[i], Score: s})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored, nil
}

func activityScore(plan *models.Plan, a Activity) int {
	score := 0
	download := float64(plan.DownloadSpeed)
	minSpeed := float64(a.MinSpeed)

	switch {
	case download >= minSpeed*1.5:
		score += 25
	case download >= minSpeed:
		score += 15
	default:
		score += 5
	}

	if a.UploadWeighted && float64(plan.UploadSpeed) >= minSpeed*0.5 {
		score += 10
	}
	if plan.HasCategory(a.Category) {
		score += 20
	}
	return score
}

func householdScore(download, householdSize int) int {
	perPerson := float64(download) / float64(householdSize)
	switch {
	case perPerson >= 100:
		return 20
	case perPerson >= 50:
		return 12
	default:
		return 3
	}
}

// efficiencyScore rates Mbps per BRL. A free plan counts as maximally efficient.
func efficiencyScore(plan *models.Plan) int {
	efficiency := math.Inf(1)
	if price := plan.Price.InexactFloat64(); price > 0 {
		efficiency = float64(plan.DownloadSpeed) / price
	}
	switch {
	case efficiency >= 4:
		return 15
	case efficiency >= 2.5:
		return 10
	default:
		return 4
	}
}
