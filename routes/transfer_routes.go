package routes

import (
	"wms-core/config"
	"wms-core/controllers"
	"wms-core/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupTransferRoutes(app *fiber.App, transferController *controllers.TransferController) {
	api := app.Group(config.MAIN_ROUTES+"/transfers", middleware.AuthMiddleware)

	api.Post("/", transferController.CreateTransfer)
	api.Get("/", transferController.ListTransfers)
	api.Get("/:id", transferController.GetTransfer)
	api.Post("/:id/execute", transferController.ExecuteTransfer)
	api.Post("/:id/cancel", transferController.CancelTransfer)
}
