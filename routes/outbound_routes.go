package routes

import (
	"wms-core/config"
	"wms-core/controllers"
	"wms-core/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupOutboundRoutes(app *fiber.App, outboundController *controllers.OutboundController) {
	api := app.Group(config.MAIN_ROUTES+"/outbound", middleware.AuthMiddleware)

	api.Post("/", outboundController.CreateOrder)
	api.Get("/", outboundController.ListOrders)
	api.Get("/:id", outboundController.GetOrder)
	api.Post("/:id/items/:itemId/pick", outboundController.PickItem)
	api.Post("/:id/stage", outboundController.StageOrder)
	api.Post("/:id/assign", outboundController.AssignDriver)
	api.Post("/:id/scan", outboundController.ScanPickupUnit)
	api.Post("/:id/ship", outboundController.ShipOrder)
	api.Post("/:id/start-delivery", outboundController.StartDelivery)
	api.Post("/:id/confirm-delivery", outboundController.ConfirmDelivery)
	api.Post("/:id/delivery-failure", outboundController.RecordDeliveryFailure)
	api.Post("/:id/cancel", outboundController.CancelOrder)
}
