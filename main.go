package main

import (
	"wms-core/config"
	"wms-core/controllers"
	"wms-core/controllers/idgen"
	"wms-core/database"
	"wms-core/migration"
	"wms-core/pkg/logger"
	"wms-core/pkg/mailer"
	"wms-core/repositories"
	"wms-core/routes"
	"wms-core/services"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.LoadConfig()
	log := logger.New(config.APP_ENV, config.LOG_LEVEL)

	db, err := database.Open()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := migration.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to auto migrate")
	}

	idgen.Init()

	productRepo := repositories.NewProductRepository(db)
	locationRepo := repositories.NewLocationRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	store := repositories.NewEngineStore(db)

	// Master data feeds the in-memory registries the engine validates against.
	capacity := services.NewCapacityRegistry(log)
	locations, err := locationRepo.List("")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load locations")
	}
	for _, l := range locations {
		capacity.Register(services.LocationInfo{
			Code:     l.LocationCode,
			WhsCode:  l.WhsCode,
			Type:     l.LocationType,
			Capacity: l.Capacity,
			Blocked:  l.IsBlocked,
		})
	}
	if !capacity.Exists(config.DockLocation) {
		capacity.Register(services.LocationInfo{Code: config.DockLocation, Type: "dock"})
	}

	catalog := services.NewCatalog()
	products, err := productRepo.List()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load products")
	}
	for _, p := range products {
		catalog.Register(services.ProductInfo{
			ItemCode:        p.ItemCode,
			Uom:             p.Uom,
			ShelfLifeMonths: p.ShelfLifeMonths,
		})
	}

	ledger := services.NewLedger(capacity, catalog, store, log)
	stickers := services.NewStickerRegistry(store, log)
	inbound := services.NewInboundService(ledger, stickers, catalog, store, config.DockLocation, log)
	outbound := services.NewOutboundService(ledger, stickers, catalog, store, log)
	returns := services.NewReturnService(ledger, stickers, outbound, nil, store, log)
	transfers := services.NewTransferService(ledger, stickers, store, log)

	state, err := store.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load engine state")
	}
	ledger.Restore(state.Lots)
	stickers.Restore(state.Stickers)
	inbound.Restore(state.Receipts, state.LastReceiptNo)
	outbound.Restore(state.Orders, state.LastOrderNo)
	returns.Restore(state.Returns, state.LastReturnNo)
	transfers.Restore(state.Transfers, state.LastTransferNo)
	log.Info().
		Int("lots", len(state.Lots)).
		Int("stickers", len(state.Stickers)).
		Int("receipts", len(state.Receipts)).
		Int("orders", len(state.Orders)).
		Msg("engine state restored")

	mail := mailer.New(log)

	app := fiber.New()
	config.SetupCORS(app)

	routes.SetupInboundRoutes(app, controllers.NewInboundController(inbound))
	routes.SetupOutboundRoutes(app, controllers.NewOutboundController(outbound, mail))
	routes.SetupReturnRoutes(app, controllers.NewReturnController(returns))
	routes.SetupTransferRoutes(app, controllers.NewTransferController(transfers))
	routes.SetupInventoryRoutes(app,
		controllers.NewInventoryController(ledger, reportRepo),
		controllers.NewStickerController(stickers, ledger))
	routes.SetupMasterRoutes(app,
		controllers.NewProductController(productRepo, catalog),
		controllers.NewLocationController(locationRepo, capacity))

	log.Info().Str("port", config.APP_PORT).Msg("starting server")
	if err := app.Listen(":" + config.APP_PORT); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
