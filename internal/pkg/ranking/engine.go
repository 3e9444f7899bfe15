package ranking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/metrics"
)

const DefaultWorkers = 4

// Store is the persistence the engine needs.
type Store interface {
	// ListEngagement returns aggregates for every plan, including plans without any engagement.
	ListEngagement(ctx context.Context) ([]models.PlanStats, error)
	// UpdateRanking persists the score and the recomputed click and conversion counts in one write.
	UpdateRanking(ctx context.Context, planID uint, score float64, clicks, conversions int64) error
}

// Failure is a plan whose update did not go through.
type Failure struct {
	PlanID uint   `json:"plan_id"`
	Error  string `json:"error"`
}

// Report summarizes one recomputation pass.
type Report struct {
	Total     int           `json:"total"`
	Updated   int           `json:"updated"`
	Failures  []Failure     `json:"failures"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

type Engine struct {
	store   Store
	workers int
	now     func() time.Time
}

func NewEngine(store Store, workers int) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{store: store, workers: workers, now: time.Now}
}

// Recompute scores every plan and persists the results. A failing plan does not
// abort the pass; it is reported in Report.Failures. Only a failure to read the
// engagement aggregates or a cancelled context returns an error.
func (e *Engine) Recompute(ctx context.Context) (*Report, error) {
	started := e.now()
	stats, err := e.store.ListEngagement(ctx)
	if err != nil {
		return nil, fmt.Errorf("list engagement: %w", err)
	}

	report := &Report{Total: len(stats), StartedAt: started, Failures: []Failure{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, s := range stats {
		s := s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score := Score(Signals{
				AvgRating:   s.MeanRating(),
				Conversions: s.ConversionCount,
				Clicks:      s.ClickCount,
				Favorites:   s.FavoriteCount,
			})
			uerr := e.store.UpdateRanking(gctx, s.PlanID, score, s.ClickCount, s.ConversionCount)

			mu.Lock()
			defer mu.Unlock()
			if uerr != nil {
				log.Warnf("[Ranking] Failed to update plan %d: %v", s.PlanID, uerr)
				report.Failures = append(report.Failures, Failure{PlanID: s.PlanID, Error: uerr.Error()})
				return nil
			}
			report.Updated++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].PlanID < report.Failures[j].PlanID })

	report.Duration = e.now().Sub(started)
	metrics.RecordRankingRun(report.Duration, report.Updated, len(report.Failures), e.now())
	log.Infof("[Ranking] Recomputed %d/%d plans in %v (%d failures)", report.Updated, report.Total, report.Duration, len(report.Failures))
	return report, nil
}
