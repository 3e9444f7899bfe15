package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/app/repository"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/analytics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/cep"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/metrics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/visibility"
)

// HandleSearchPlans lists active plans for a CEP and category.
// Visitors get the first two plans with technical fields masked.
func (a *APIController) HandleSearchPlans(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerOf(c)

	filter := repository.PlanFilter{Category: strings.TrimSpace(c.Query("category"))}
	if raw := strings.TrimSpace(c.Query("cep")); raw != "" {
		if !cep.Valid(raw) {
			return errorJSON(c, fiber.StatusBadRequest, "invalid_cep", "cep must contain at least 5 digits")
		}
		filter.CepPrefix = cep.Normalize(raw)
	}

	listings, err := a.repos.Plan.Search(ctx, filter, caller.UserID)
	if err != nil {
		return internalError(c, "Failed to load plans", err)
	}

	result := a.policy.List(listings, caller)
	metrics.RecordSearch(caller.Authenticated, result.HiddenCount)

	if filter.CepPrefix != "" {
		a.track(c, analytics.EventCepSearched, map[string]interface{}{
			"cep":           filter.CepPrefix,
			"results_count": result.Total,
		})
		if caller.Authenticated {
			entry := &models.SearchHistory{UserID: caller.UserID, Cep: filter.CepPrefix, ResultsCount: result.Total}
			if err := a.repos.SearchHistory.Create(ctx, entry); err != nil {
				log.Warnf("[API] Failed to store search history for user %d: %v", caller.UserID, err)
			}
			a.badges.CheckQuietly(ctx, caller.UserID)
		}
	}

	return c.JSON(result)
}

// HandleGetPlan returns one plan page and counts the view
func (a *APIController) HandleGetPlan(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := callerOf(c)

	id, ok := planIDParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_id", "Invalid plan id")
	}

	listing, err := a.repos.Plan.GetListing(ctx, id, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return internalError(c, "Failed to load plan", err)
	}

	reviews, err := a.repos.Review.ListByPlan(ctx, id, visibility.ReviewLimit(caller))
	if err != nil {
		return internalError(c, "Failed to load reviews", err)
	}

	var compare []models.PlanListing
	if caller.Authenticated {
		compare, err = a.repos.Plan.Compare(ctx, &listing.Plan, visibility.ComparePlanLimit, caller.UserID)
		if err != nil {
			return internalError(c, "Failed to load comparison plans", err)
		}
	}

	if a.views != nil {
		if err := a.views.AddPlanView(ctx, id); err != nil {
			log.Warnf("[API] Failed to count view of plan %d: %v", id, err)
		}
	}

	a.track(c, analytics.EventPlanDetailOpened, map[string]interface{}{
		"plan_id":   listing.Plan.ID,
		"plan_name": listing.Plan.Name,
	})

	return c.JSON(a.policy.Detail(*listing, reviews, compare, caller))
}

type clickRequest struct {
	SessionID string `json:"session_id" validate:"max=64"`
}

// HandleClickPlan records an outbound click on a plan card
func (a *APIController) HandleClickPlan(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, ok := planIDParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_id", "Invalid plan id")
	}

	// The body is optional
	var req clickRequest
	_ = c.BodyParser(&req)
	if err := a.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	if _, err := a.repos.Plan.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return internalError(c, "Failed to load plan", err)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = usercontext.GetUserContext(c).SessionID
	}
	click := &models.PlanClick{
		PlanID: id,
		UserID: usercontext.GetUserIDPtr(c),
		IP:     clientIP(c),
	}
	if sessionID != "" {
		click.SessionID = &sessionID
	}
	if err := a.repos.Plan.RecordClick(ctx, click); err != nil {
		return internalError(c, "Failed to record click", err)
	}

	a.track(c, analytics.EventPlanClicked, map[string]interface{}{"plan_id": id})

	return c.JSON(fiber.Map{"success": true})
}

type convertRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=150"`
	Phone string `json:"phone" validate:"required,min=8,max=20"`
	Cep   string `json:"cep" validate:"required,min=5,max=9"`
}

// HandleConvertPlan captures a lead ("hire") for a plan. Visitors may convert.
func (a *APIController) HandleConvertPlan(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, ok := planIDParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_id", "Invalid plan id")
	}

	var req convertRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Cep = strings.TrimSpace(req.Cep)
	if err := a.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	if _, err := a.repos.Plan.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return internalError(c, "Failed to load plan", err)
	}

	lead := &models.Lead{
		PlanID: id,
		UserID: usercontext.GetUserIDPtr(c),
		Name:   req.Name,
		Phone:  req.Phone,
		Cep:    req.Cep,
		Status: models.LEAD_STATUS_NEW,
	}
	if err := a.repos.Plan.RecordConversion(ctx, lead); err != nil {
		return internalError(c, "Failed to capture lead", err)
	}
	metrics.LeadsCaptured.Inc()

	a.track(c, analytics.EventLeadCaptured, map[string]interface{}{
		"plan_id": id,
		"lead_id": lead.UUID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "lead_id": lead.UUID})
}

type reviewRequest struct {
	Rating  int    `json:"nota" validate:"required,min=1,max=5"`
	Comment string `json:"comentario" validate:"required,min=5,max=500"`
}

// HandleCreateReview publishes the caller's review of a plan
func (a *APIController) HandleCreateReview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := usercontext.GetUserID(c)

	id, ok := planIDParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_id", "Invalid plan id")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := a.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	if _, err := a.repos.Plan.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return internalError(c, "Failed to load plan", err)
	}

	review := &models.Review{UserID: userID, PlanID: id, Rating: req.Rating, Comment: req.Comment}
	if err := a.repos.Review.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrAlreadyReviewed) {
			return errorJSON(c, fiber.StatusBadRequest, "already_reviewed", "You already reviewed this plan")
		}
		return internalError(c, "Failed to save review", err)
	}

	a.track(c, analytics.EventReviewPublished, map[string]interface{}{
		"plan_id": id,
		"nota":    req.Rating,
	})
	a.badges.CheckQuietly(ctx, userID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": visibility.ReviewView{
		ID:        review.ID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Author:    usercontext.GetUserContext(c).Username,
		CreatedAt: review.CreatedAt,
	}})
}
