package routes

import (
	"wms-core/config"
	"wms-core/controllers"
	"wms-core/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupInboundRoutes(app *fiber.App, inboundController *controllers.InboundController) {
	api := app.Group(config.MAIN_ROUTES+"/inbound", middleware.AuthMiddleware)

	api.Post("/", inboundController.CreateReceipt)
	api.Get("/", inboundController.ListReceipts)
	api.Get("/:id", inboundController.GetReceipt)
	api.Post("/:id/items/:itemId/receive", inboundController.ReceiveItem)
	api.Post("/:id/lines/:lineId/putaway", inboundController.PutawayItem)
	api.Post("/:id/cancel", inboundController.CancelReceipt)
}
