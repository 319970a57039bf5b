package routes

import (
	"wms-core/config"
	"wms-core/controllers"
	"wms-core/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupMasterRoutes(app *fiber.App, productController *controllers.ProductController, locationController *controllers.LocationController) {
	products := app.Group(config.MAIN_ROUTES+"/products", middleware.AuthMiddleware)
	products.Post("/", productController.CreateProduct)
	products.Post("/upload", productController.CreateProductsFromExcel)
	products.Get("/", productController.ListProducts)
	products.Get("/:code", productController.GetProduct)
	products.Put("/:code", productController.UpdateProduct)

	locations := app.Group(config.MAIN_ROUTES+"/locations", middleware.AuthMiddleware)
	locations.Post("/", locationController.CreateLocation)
	locations.Post("/upload", locationController.CreateLocationsFromExcel)
	locations.Get("/", locationController.ListLocations)
	locations.Get("/:code", locationController.GetLocation)
	locations.Put("/:code", locationController.UpdateLocation)
	locations.Put("/:code/blocked", locationController.SetBlocked)
}
