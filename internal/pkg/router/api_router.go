package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PlanoCerto/app/controllers"
	apiv1 "github.com/ManuelReschke/PlanoCerto/internal/api/v1"
)

type ApiRouter struct {
	controller *controllers.APIController
	limits     apiv1.Limits
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, h.controller, h.limits)
}

func NewApiRouter(ctrl *controllers.APIController) *ApiRouter {
	return &ApiRouter{controller: ctrl, limits: apiv1.DefaultLimits}
}
