package jobqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/ranking"
)

type fakeRecomputer struct {
	report *ranking.Report
	err    error
	calls  atomic.Int32
}

func (f *fakeRecomputer) Recompute(ctx context.Context) (*ranking.Report, error) {
	f.calls.Add(1)
	return f.report, f.err
}

func rankingJob() *Job {
	return &Job{
		ID:      "job-1",
		Type:    JobTypeRankingRecompute,
		Payload: RankingRecomputeJobPayload{RequestedBy: 1, Reason: ReasonManual}.ToMap(),
	}
}

func TestRankingRecomputeHandler_Success(t *testing.T) {
	engine := &fakeRecomputer{report: &ranking.Report{Total: 3, Updated: 3}}

	err := RankingRecomputeHandler(engine)(context.Background(), rankingJob())

	require.NoError(t, err)
	assert.Equal(t, int32(1), engine.calls.Load())
}

func TestRankingRecomputeHandler_PartialFailuresDoNotFailJob(t *testing.T) {
	engine := &fakeRecomputer{report: &ranking.Report{
		Total:    3,
		Updated:  2,
		Failures: []ranking.Failure{{PlanID: 9, Error: "deadlock"}},
	}}

	err := RankingRecomputeHandler(engine)(context.Background(), rankingJob())

	assert.NoError(t, err)
}

func TestRankingRecomputeHandler_EngineError(t *testing.T) {
	engine := &fakeRecomputer{err: errors.New("list engagement: connection refused")}

	err := RankingRecomputeHandler(engine)(context.Background(), rankingJob())

	assert.EqualError(t, err, "list engagement: connection refused")
}

func TestRankingRecomputeHandler_InvalidPayload(t *testing.T) {
	engine := &fakeRecomputer{report: &ranking.Report{}}
	job := rankingJob()
	job.Payload = map[string]interface{}{"requested_by": "admin"}

	err := RankingRecomputeHandler(engine)(context.Background(), job)

	assert.ErrorContains(t, err, "invalid ranking payload")
	assert.Zero(t, engine.calls.Load())
}
