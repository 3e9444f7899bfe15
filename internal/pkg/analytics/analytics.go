// Package analytics records product events. Recording is best effort: a failed
// write is logged and counted but never surfaces to the caller.
package analytics

import (
	"context"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/metrics"
)

type EventType string

const (
	// client side events
	EventPageView          EventType = "PAGE_VIEW"
	EventPlanViewed        EventType = "PLAN_VIEWED"
	EventComparisonStarted EventType = "COMPARISON_STARTED"
	EventCTALoginShown     EventType = "CTA_LOGIN_SHOWN"
	EventSignupStarted     EventType = "SIGNUP_STARTED"
	EventHireClicked       EventType = "HIRE_CLICKED"

	// server side events
	EventCepSearched            EventType = "CEP_SEARCHED"
	EventPlanDetailOpened       EventType = "PLAN_DETAIL_OPENED"
	EventPlanClicked            EventType = "PLAN_CLICKED"
	EventLeadCaptured           EventType = "LEAD_CAPTURED"
	EventReviewPublished        EventType = "REVIEW_PUBLISHED"
	EventQuestionnaireCompleted EventType = "QUESTIONNAIRE_COMPLETED"
	EventAlertCreated           EventType = "ALERT_CREATED"
	EventFavoriteAdded          EventType = "FAVORITE_ADDED"
	EventFavoriteRemoved        EventType = "FAVORITE_REMOVED"
	EventSignupCompleted        EventType = "SIGNUP_COMPLETED"
	EventLogin                  EventType = "LOGIN"
)

var clientEvents = map[EventType]struct{}{
	EventPageView:          {},
	EventPlanViewed:        {},
	EventComparisonStarted: {},
	EventCTALoginShown:     {},
	EventSignupStarted:     {},
	EventHireClicked:       {},
}

// ClientAllowed reports whether browsers may submit the event type directly.
func ClientAllowed(t EventType) bool {
	_, ok := clientEvents[t]
	return ok
}

// Event is the input of Track. Empty strings are stored as NULL.
type Event struct {
	Type      EventType
	UserID    *uint
	SessionID string
	Payload   map[string]interface{}
	IP        string
	UserAgent string
}

type Store interface {
	Create(ctx context.Context, event *models.Event) error
}

type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Track stores the event. It never fails.
func (t *Tracker) Track(ctx context.Context, e Event) {
	if t == nil || t.store == nil {
		return
	}

	payload := e.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	record := &models.Event{
		Type:      string(e.Type),
		UserID:    e.UserID,
		SessionID: optional(e.SessionID),
		Payload:   payload,
		IP:        optional(e.IP),
		UserAgent: optional(truncate(e.UserAgent, 255)),
	}

	err := t.store.Create(ctx, record)
	metrics.RecordEvent(string(e.Type), err)
	if err != nil {
		log.Warnf("[Analytics] Failed to store %s event: %v", e.Type, err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
