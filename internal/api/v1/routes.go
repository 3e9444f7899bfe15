// Package apiv1 maps the public v1 JSON API onto the controllers.
// The routes are documented in public/docs/v1/openapi.yml.
package apiv1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/PlanoCerto/app/controllers"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/middleware"
)

// Limits holds the per-IP request budgets of the rate limited routes
type Limits struct {
	SearchPerMinute   int
	RegisterPerMinute int
}

// DefaultLimits are the budgets used in production
var DefaultLimits = Limits{SearchPerMinute: 30, RegisterPerMinute: 5}

func perMinute(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + ":" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests, try again in a minute",
			})
		},
	})
}

// RegisterHandlers installs every v1 route on router
func RegisterHandlers(router fiber.Router, ctrl *controllers.APIController, limits Limits) {
	router.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ping": "pong"})
	})
	router.Get("/stats", ctrl.HandleGetStats)

	// plans
	router.Get("/plans", perMinute(limits.SearchPerMinute), ctrl.HandleSearchPlans)
	router.Post("/plans/recommend", middleware.RequireAPISessionAuth, ctrl.HandleRecommend)
	router.Get("/plans/:id", ctrl.HandleGetPlan)
	router.Post("/plans/:id/click", ctrl.HandleClickPlan)
	router.Post("/plans/:id/convert", ctrl.HandleConvertPlan)
	router.Post("/plans/:id/reviews", middleware.RequireAPISessionAuth, ctrl.HandleCreateReview)

	// favorites
	favorites := router.Group("/favorites", middleware.RequireAPISessionAuth)
	favorites.Get("/", ctrl.HandleListFavorites)
	favorites.Post("/", ctrl.HandleAddFavorite)
	favorites.Delete("/", ctrl.HandleRemoveFavorite)

	// price alerts
	alerts := router.Group("/alerts", middleware.RequireAPISessionAuth)
	alerts.Get("/", ctrl.HandleListAlerts)
	alerts.Post("/", ctrl.HandleCreateAlert)
	alerts.Delete("/", ctrl.HandleDeleteAlert)

	// user
	user := router.Group("/user", middleware.RequireAPISessionAuth)
	user.Get("/profile", ctrl.HandleGetUserProfile)
	user.Get("/history", ctrl.HandleGetSearchHistory)

	router.Post("/track", ctrl.HandleTrack)

	// auth
	authGroup := router.Group("/auth")
	authGroup.Post("/register", perMinute(limits.RegisterPerMinute), ctrl.HandleRegister)
	authGroup.Post("/login", ctrl.HandleLogin)
	authGroup.Post("/logout", ctrl.HandleLogout)

	// admin
	admin := router.Group("/admin", middleware.RequireAPIAdmin)
	admin.Post("/ranking/recompute", ctrl.HandleAdminRecomputeRanking)
	admin.Get("/jobs", ctrl.HandleAdminJobStats)
}
