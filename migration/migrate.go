package migration

import (
	"wms-core/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.Warehouse{},
		&models.Location{},
		&models.Lot{},
		&models.StockMovement{},
		&models.Sticker{},
		&models.InboundHeader{},
		&models.InboundContainer{},
		&models.InboundItem{},
		&models.InboundLine{},
		&models.InboundPutaway{},
		&models.OutboundHeader{},
		&models.OutboundItem{},
		&models.PickAllocation{},
		&models.DeliveryFailure{},
		&models.ReturnHeader{},
		&models.ReturnItem{},
		&models.ReturnInspection{},
		&models.TransferHeader{},
		&models.TransferItem{},
	)
}
