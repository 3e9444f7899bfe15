package controllers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/PlanoCerto/app/repository"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/analytics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/auth"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/badges"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/jobqueue"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/recommend"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/statistics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/visibility"
)

// ViewCounter buffers plan page views
type ViewCounter interface {
	AddPlanView(ctx context.Context, planID uint) error
}

// JobQueue is the part of the job queue the admin endpoints use
type JobQueue interface {
	EnqueueRankingRecompute(requestedBy uint, reason string) (*jobqueue.Job, error)
	GetJobStats(ctx context.Context) (map[jobqueue.JobStatus]int64, error)
	GetQueueSize(ctx context.Context) (int64, error)
}

// Dependencies wires the API controller. Views, Jobs, Stats and Sessions may
// be nil; the endpoints depending on them degrade or report unavailability.
type Dependencies struct {
	Repos       *repository.Repositories
	Policy      *visibility.Policy
	Recommender *recommend.Engine
	Tracker     *analytics.Tracker
	Badges      *badges.Awarder
	Auth        *auth.Service
	Sessions    *session.Store
	Views       ViewCounter
	Jobs        JobQueue
	Stats       *statistics.Service
	Now         func() time.Time
}

// APIController serves the JSON API
type APIController struct {
	repos       *repository.Repositories
	policy      *visibility.Policy
	recommender *recommend.Engine
	tracker     *analytics.Tracker
	badges      *badges.Awarder
	auth        *auth.Service
	sessions    *session.Store
	views       ViewCounter
	jobs        JobQueue
	stats       *statistics.Service
	now         func() time.Time
	validate    *validator.Validate
}

// NewAPIController creates a new API controller
func NewAPIController(deps Dependencies) *APIController {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	policy := deps.Policy
	if policy == nil {
		policy = visibility.NewPolicy(now)
	}
	recommender := deps.Recommender
	if recommender == nil {
		recommender = recommend.NewEngine(nil)
	}
	return &APIController{
		repos:       deps.Repos,
		policy:      policy,
		recommender: recommender,
		tracker:     deps.Tracker,
		badges:      deps.Badges,
		auth:        deps.Auth,
		sessions:    deps.Sessions,
		views:       deps.Views,
		jobs:        deps.Jobs,
		stats:       deps.Stats,
		now:         now,
		validate:    validator.New(),
	}
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// internalError logs err and answers with a generic 500
func internalError(c *fiber.Ctx, message string, err error) error {
	log.Errorf("[API] %s %s: %s: %v", c.Method(), c.Path(), message, err)
	return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", message)
}

// validationError turns the first failing field into a readable message
func validationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fe.Field() + " failed on " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return errorJSON(c, fiber.StatusBadRequest, "validation_error", msg)
	}
	return errorJSON(c, fiber.StatusBadRequest, "validation_error", err.Error())
}

func planIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func callerOf(c *fiber.Ctx) visibility.Caller {
	uc := usercontext.GetUserContext(c)
	if !uc.IsLoggedIn {
		return visibility.Caller{}
	}
	return visibility.Caller{Authenticated: true, UserID: uc.UserID}
}

// track records an analytics event for the current request
func (a *APIController) track(c *fiber.Ctx, t analytics.EventType, payload map[string]interface{}) {
	uc := usercontext.GetUserContext(c)
	a.tracker.Track(c.UserContext(), analytics.Event{
		Type:      t,
		UserID:    usercontext.GetUserIDPtr(c),
		SessionID: uc.SessionID,
		Payload:   payload,
		IP:        clientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
}
