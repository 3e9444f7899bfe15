package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PlanoCerto/app/controllers"
)

// Router installs a set of routes and middleware on the app
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, ctrl *controllers.APIController) {
	// The HttpRouter installs the request-wide middleware (user context,
	// request metrics) the API routes depend on, so it goes first.
	setup(app, NewHttpRouter(), NewApiRouter(ctrl))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
