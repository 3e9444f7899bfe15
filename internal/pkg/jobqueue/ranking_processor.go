package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/ranking"
)

// RankingLockTTL bounds how long a queued recompute blocks further requests
const RankingLockTTL = 15 * time.Minute

// Recomputer is satisfied by *ranking.Engine
type Recomputer interface {
	Recompute(ctx context.Context) (*ranking.Report, error)
}

// RankingRecomputeHandler runs a full ranking recompute. Per-plan failures are
// logged and do not fail the job; only a failure to load plans does.
func RankingRecomputeHandler(engine Recomputer) Handler {
	return func(ctx context.Context, job *Job) error {
		payload, err := RankingRecomputeJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("invalid ranking payload: %w", err)
		}

		report, err := engine.Recompute(ctx)
		if err != nil {
			return err
		}

		log.Infof("[RankingJob] Job %s (%s, by=%d): updated %d/%d plans in %s",
			job.ID, payload.Reason, payload.RequestedBy, report.Updated, report.Total, report.Duration)
		for _, f := range report.Failures {
			log.Warnf("[RankingJob] Plan %d not updated: %s", f.PlanID, f.Error)
		}
		return nil
	}
}

// EnqueueRankingRecompute queues a recompute unless one is already pending
func (q *Queue) EnqueueRankingRecompute(requestedBy uint, reason string) (*Job, error) {
	payload := RankingRecomputeJobPayload{RequestedBy: requestedBy, Reason: reason}
	return q.EnqueueUniqueJob(JobTypeRankingRecompute, payload.ToMap(), RankingLockTTL)
}
