package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/analytics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/visibility"
)

type favoriteRequest struct {
	PlanID uint `json:"plan_id" validate:"required"`
}

// HandleListFavorites returns the caller's favorited plans, newest first
func (a *APIController) HandleListFavorites(c *fiber.Ctx) error {
	listings, err := a.repos.Favorite.ListPlans(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return internalError(c, "Failed to load favorites", err)
	}

	favorites := make([]visibility.FullPlanView, 0, len(listings))
	for _, l := range listings {
		favorites = append(favorites, a.policy.FullView(l))
	}
	return c.JSON(fiber.Map{"favorites": favorites})
}

// HandleAddFavorite favorites a plan. Adding an existing favorite succeeds.
func (a *APIController) HandleAddFavorite(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := usercontext.GetUserID(c)

	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if err := a.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	if _, err := a.repos.Plan.GetByID(ctx, req.PlanID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return internalError(c, "Failed to load plan", err)
	}

	if err := a.repos.Favorite.Add(ctx, userID, req.PlanID); err != nil {
		return internalError(c, "Failed to add favorite", err)
	}

	a.track(c, analytics.EventFavoriteAdded, map[string]interface{}{"plan_id": req.PlanID})
	a.badges.CheckQuietly(ctx, userID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"favorite": fiber.Map{"user_id": userID, "plan_id": req.PlanID},
	})
}

// HandleRemoveFavorite unfavorites the plan given by ?plan_id=
func (a *APIController) HandleRemoveFavorite(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	planID, err := strconv.ParseUint(c.Query("plan_id"), 10, 64)
	if err != nil || planID == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "plan_id required")
	}

	if err := a.repos.Favorite.Remove(c.UserContext(), userID, uint(planID)); err != nil {
		return internalError(c, "Failed to remove favorite", err)
	}

	a.track(c, analytics.EventFavoriteRemoved, map[string]interface{}{"plan_id": planID})

	return c.JSON(fiber.Map{"success": true})
}
