package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/app/repository"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/analytics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/metrics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/recommend"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/visibility"
)

type questionnaireRequest struct {
	HouseholdSize int      `json:"pessoas" validate:"required,min=1,max=20"`
	Devices       []string `json:"dispositivos" validate:"dive,max=50"`
	Activities    []string `json:"atividades" validate:"dive,max=50"`
	CurrentSpeed  *int     `json:"velocidade_atual" validate:"omitempty,gt=0"`
}

type recommendedPlan struct {
	visibility.FullPlanView
	CompatibilityScore int `json:"compatibility_score"`
}

// HandleRecommend stores the questionnaire as the caller's profile and returns
// every active plan ordered by compatibility.
func (a *APIController) HandleRecommend(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := usercontext.GetUserID(c)

	var req questionnaireRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if err := a.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	profile := &models.UserProfile{
		UserID:        userID,
		HouseholdSize: req.HouseholdSize,
		Devices:       nonNil(req.Devices),
		Activities:    nonNil(req.Activities),
		CurrentSpeed:  req.CurrentSpeed,
	}
	if err := a.repos.Profile.Upsert(ctx, profile); err != nil {
		return internalError(c, "Failed to save profile", err)
	}

	listings, err := a.repos.Plan.Search(ctx, repository.PlanFilter{}, userID)
	if err != nil {
		return internalError(c, "Failed to load plans", err)
	}

	scored, err := a.recommender.Rank(listings, recommend.Profile{
		HouseholdSize: req.HouseholdSize,
		Activities:    req.Activities,
	})
	if err != nil {
		var cfgErr *recommend.ConfigurationError
		if errors.As(err, &cfgErr) {
			return errorJSON(c, fiber.StatusBadRequest, "invalid_profile", cfgErr.Error())
		}
		return internalError(c, "Failed to score plans", err)
	}

	plans := make([]recommendedPlan, 0, len(scored))
	for _, s := range scored {
		plans = append(plans, recommendedPlan{
			FullPlanView:       a.policy.FullView(s.Listing),
			CompatibilityScore: s.Score,
		})
	}
	metrics.Recommendations.Inc()
	log.Debugf("[API] Recommended %d plans for user %d", len(plans), userID)

	a.track(c, analytics.EventQuestionnaireCompleted, map[string]interface{}{
		"atividades": req.Activities,
		"pessoas":    req.HouseholdSize,
	})

	return c.JSON(fiber.Map{"plans": plans})
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
