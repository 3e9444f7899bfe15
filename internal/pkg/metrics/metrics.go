package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planocerto_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planocerto_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Ranking
	RankingRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planocerto_ranking_recompute_duration_seconds",
			Help:    "Duration of full ranking recomputations in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RankingPlansScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planocerto_ranking_plans_scored_total",
			Help: "Total number of plans whose ranking score was persisted",
		},
	)

	RankingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planocerto_ranking_failures_total",
			Help: "Total number of plans that could not be updated during a recomputation",
		},
	)

	RankingLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "planocerto_ranking_last_run_timestamp_seconds",
			Help: "Unix time of the last finished ranking recomputation",
		},
	)

	// Marketplace
	PlanSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planocerto_plan_searches_total",
			Help: "Total number of plan searches by audience",
		},
		[]string{"audience"}, // "visitor", "member"
	)

	PlansHidden = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planocerto_plans_hidden_total",
			Help: "Total number of plans withheld from anonymous searches",
		},
	)

	Recommendations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planocerto_recommendations_total",
			Help: "Total number of questionnaire recommendations served",
		},
	)

	LeadsCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planocerto_leads_captured_total",
			Help: "Total number of leads captured",
		},
	)

	EventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planocerto_events_tracked_total",
			Help: "Total number of analytics events recorded",
		},
		[]string{"type", "result"}, // result: "stored", "dropped"
	)

	// Background work
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planocerto_jobs_processed_total",
			Help: "Total number of background jobs processed",
		},
		[]string{"type", "status"},
	)

	CounterFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planocerto_view_counter_flushes_total",
			Help: "Total number of buffered view counter flushes",
		},
		[]string{"status"},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRankingRun records a recomputation pass.
func RecordRankingRun(duration time.Duration, updated, failures int, finished time.Time) {
	RankingRecomputeDuration.Observe(duration.Seconds())
	RankingPlansScored.Add(float64(updated))
	RankingFailures.Add(float64(failures))
	RankingLastRun.Set(float64(finished.Unix()))
}

// RecordSearch records a plan search and how many plans it withheld.
func RecordSearch(authenticated bool, hidden int) {
	audience := "visitor"
	if authenticated {
		audience = "member"
	}
	PlanSearches.WithLabelValues(audience).Inc()
	if hidden > 0 {
		PlansHidden.Add(float64(hidden))
	}
}

// RecordEvent records an analytics event write attempt.
func RecordEvent(eventType string, err error) {
	result := "stored"
	if err != nil {
		result = "dropped"
	}
	EventsTracked.WithLabelValues(eventType, result).Inc()
}

// RecordJob records a processed background job.
func RecordJob(jobType string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	JobsProcessed.WithLabelValues(jobType, status).Inc()
}

// RecordCounterFlush records a buffered view counter flush.
func RecordCounterFlush(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	CounterFlushes.WithLabelValues(status).Inc()
}
