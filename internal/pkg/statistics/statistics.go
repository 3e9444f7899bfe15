package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	CacheKeySummary = "statistics:summary:%s" // Format with date YYYY-MM-DD
	CacheExpiration = 5 * time.Minute
)

// Summary holds the marketplace numbers shown on the landing page.
type Summary struct {
	ActivePlans int64 `json:"active_plans"`
	Providers   int64 `json:"providers"`
	Users       int64 `json:"users"`
	LeadsToday  int64 `json:"leads_today"`
}

// Counter runs the underlying COUNT queries.
type Counter interface {
	CountActivePlans(ctx context.Context) (int64, error)
	CountProviders(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountLeadsSince(ctx context.Context, since time.Time) (int64, error)
}

// KV is the cache the summary is kept in.
type KV interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
}

type Service struct {
	counter Counter
	kv      KV
	now     func() time.Time
}

func NewService(counter Counter, kv KV, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{counter: counter, kv: kv, now: now}
}

// Get returns the summary from cache or, on a miss, from the database and
// refreshes the cache. Cache failures only cost the extra queries.
func (s *Service) Get(ctx context.Context) (Summary, error) {
	today := s.now().UTC().Format("2006-01-02")
	key := fmt.Sprintf(CacheKeySummary, today)

	if s.kv != nil {
		if raw, err := s.kv.Get(key); err == nil && raw != "" {
			var cached Summary
			if jerr := json.Unmarshal([]byte(raw), &cached); jerr == nil {
				return cached, nil
			}
		}
	}

	summary, err := s.compute(ctx, today)
	if err != nil {
		return Summary{}, err
	}

	if s.kv != nil {
		if raw, jerr := json.Marshal(summary); jerr == nil {
			if serr := s.kv.Set(key, string(raw), CacheExpiration); serr != nil {
				log.Warnf("[Statistics] Error caching summary: %v", serr)
			}
		}
	}
	return summary, nil
}

func (s *Service) compute(ctx context.Context, today string) (Summary, error) {
	var summary Summary
	var err error

	if summary.ActivePlans, err = s.counter.CountActivePlans(ctx); err != nil {
		return Summary{}, fmt.Errorf("count plans: %w", err)
	}
	if summary.Providers, err = s.counter.CountProviders(ctx); err != nil {
		return Summary{}, fmt.Errorf("count providers: %w", err)
	}
	if summary.Users, err = s.counter.CountUsers(ctx); err != nil {
		return Summary{}, fmt.Errorf("count users: %w", err)
	}

	dayStart, _ := time.Parse("2006-01-02", today)
	if summary.LeadsToday, err = s.counter.CountLeadsSince(ctx, dayStart); err != nil {
		return Summary{}, fmt.Errorf("count leads: %w", err)
	}
	return summary, nil
}
