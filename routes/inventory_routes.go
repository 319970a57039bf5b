package routes

import (
	"wms-core/config"
	"wms-core/controllers"
	"wms-core/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupInventoryRoutes(app *fiber.App, inventoryController *controllers.InventoryController, stickerController *controllers.StickerController) {
	api := app.Group(config.MAIN_ROUTES+"/inventory", middleware.AuthMiddleware)

	api.Post("/adjust", inventoryController.AdjustLot)
	api.Post("/move", inventoryController.MoveLot)
	api.Get("/available/:itemCode", inventoryController.QueryAvailable)
	api.Get("/report/stock", inventoryController.StockReport)
	api.Get("/report/movements", inventoryController.Movements)

	stickers := app.Group(config.MAIN_ROUTES+"/stickers", middleware.AuthMiddleware)
	stickers.Post("/", stickerController.IssueStickers)
	stickers.Get("/:code", stickerController.ResolveSticker)
}
