package routes

import (
	"wms-core/config"
	"wms-core/controllers"
	"wms-core/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupReturnRoutes(app *fiber.App, returnController *controllers.ReturnController) {
	api := app.Group(config.MAIN_ROUTES+"/returns", middleware.AuthMiddleware)

	api.Post("/", returnController.CreateReturn)
	api.Get("/", returnController.ListReturns)
	api.Get("/:id", returnController.GetReturn)
	api.Post("/:id/inspect", returnController.InspectUnit)
	api.Post("/:id/complete", returnController.CompleteReturn)
}
