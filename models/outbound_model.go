package models

import (
	"wms-core/types"

	"gorm.io/gorm"
)

type OutboundHeader struct {
	gorm.Model
	ID              types.SnowflakeID `json:"id" gorm:"primaryKey"`
	OrderNo         string            `json:"order_no" gorm:"unique"`
	CustomerCode    string            `json:"customer_code"`
	WhsCode         string            `json:"whs_code"`
	ShipDate        string            `json:"ship_date"`
	Status          string            `json:"status" gorm:"default:'new'"`
	StagingLocation string            `json:"staging_location"`
	DriverName      string            `json:"driver_name"`
	VehicleNo       string            `json:"vehicle_no"`
	DriverType      string            `json:"driver_type"` // internal, third_party
	ReceiverName    string            `json:"receiver_name"`
	ReceiverPhone   string            `json:"receiver_phone"`
	PhotoRef        string            `json:"photo_ref"`
	Remarks         string            `json:"remarks"`
	CreatedBy       int
	UpdatedBy       int
	DeletedBy       int

	Items []OutboundItem `gorm:"foreignKey:OutboundID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

type OutboundItem struct {
	gorm.Model
	ID          types.SnowflakeID `json:"id" gorm:"primaryKey"`
	OutboundID  types.SnowflakeID `json:"outbound_id" gorm:"index"`
	ItemCode    string            `json:"item_code"`
	OrderedQty  int               `json:"ordered_qty"`
	PickedQty   int               `json:"picked_qty" gorm:"default:0"`
	ReturnedQty int               `json:"returned_qty" gorm:"default:0"`
	CreatedBy   int
	UpdatedBy   int
}

// PickAllocation ties picked quantity back to the exact lot it came from,
// so batch/DOT/location stay traceable after the stock left the ledger.
type PickAllocation struct {
	gorm.Model
	ID             types.SnowflakeID `json:"id" gorm:"primaryKey"`
	OutboundID     types.SnowflakeID `json:"outbound_id" gorm:"index"`
	OutboundItemID types.SnowflakeID `json:"outbound_item_id" gorm:"index"`
	LotID          types.SnowflakeID `json:"lot_id"`
	ItemCode       string            `json:"item_code"`
	BatchNo        string            `json:"batch_no"`
	DotCode        string            `json:"dot_code"`
	WhsCode        string            `json:"whs_code"`
	LocationCode   string            `json:"location_code"`
	Quantity       int               `json:"quantity"`
	StickerCodes   string            `json:"sticker_codes" gorm:"type:text"` // comma separated
	CreatedBy      int
}

type DeliveryFailure struct {
	gorm.Model
	OutboundID types.SnowflakeID `json:"outbound_id" gorm:"index"`
	Reason     string            `json:"reason"`
	Notes      string            `json:"notes"`
	CreatedBy  int
}
