package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/app/repository"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/analytics"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/cep"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
)

type alertRequest struct {
	Cep      string          `json:"cep" validate:"required,min=5,max=9"`
	MaxPrice decimal.Decimal `json:"max_price"`
	MinSpeed *int            `json:"min_speed" validate:"omitempty,gt=0"`
	PlanID   *uint           `json:"plan_id" validate:"omitempty,gt=0"`
}

// HandleListAlerts returns the caller's price alerts, newest first
func (a *APIController) HandleListAlerts(c *fiber.Ctx) error {
	alerts, err := a.repos.Alert.ListByUser(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return internalError(c, "Failed to load alerts", err)
	}
	if alerts == nil {
		alerts = []models.PriceAlert{}
	}
	return c.JSON(fiber.Map{"alerts": alerts})
}

// HandleCreateAlert creates a price alert for a CEP prefix
func (a *APIController) HandleCreateAlert(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := usercontext.GetUserID(c)

	var req alertRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if err := a.validate.Struct(req); err != nil {
		return validationError(c, err)
	}
	if !req.MaxPrice.IsPositive() {
		return errorJSON(c, fiber.StatusBadRequest, "validation_error", "max_price must be positive")
	}
	if !cep.Valid(req.Cep) {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_cep", "cep must contain at least 5 digits")
	}

	alert := &models.PriceAlert{
		UserID:   userID,
		PlanID:   req.PlanID,
		Cep:      cep.Normalize(req.Cep),
		MaxPrice: req.MaxPrice,
		MinSpeed: req.MinSpeed,
	}
	if err := a.repos.Alert.Create(ctx, alert, models.MaxActiveAlertsPerUser); err != nil {
		if errors.Is(err, repository.ErrAlertLimitReached) {
			return errorJSON(c, fiber.StatusBadRequest, "alert_limit_reached", "Limit of 5 active alerts reached")
		}
		return internalError(c, "Failed to create alert", err)
	}

	a.track(c, analytics.EventAlertCreated, map[string]interface{}{
		"cep":       alert.Cep,
		"max_price": alert.MaxPrice.String(),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"alert": alert})
}

// HandleDeleteAlert removes the caller's alert given by ?id=
func (a *APIController) HandleDeleteAlert(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil || id == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_request", "id required")
	}

	if _, err := a.repos.Alert.Delete(c.UserContext(), uint(id), usercontext.GetUserID(c)); err != nil {
		return internalError(c, "Failed to delete alert", err)
	}
	return c.JSON(fiber.Map{"success": true})
}
