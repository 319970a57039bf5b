package models

import (
	"wms-core/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InboundHeader struct {
	gorm.Model
	ID           types.SnowflakeID `json:"id" gorm:"primaryKey"`
	ReceiptNo    string            `json:"receipt_no" gorm:"unique"`
	SupplierCode string            `json:"supplier_code"`
	WhsCode      string            `json:"whs_code"`
	ArrivalDate  string            `json:"arrival_date"`
	Status       string            `json:"status" gorm:"default:'pending'"`
	Remarks      string            `json:"remarks"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int

	Containers []InboundContainer `gorm:"foreignKey:InboundID;references:ID;constraint:OnDelete:CASCADE" json:"containers"`
}

type InboundContainer struct {
	gorm.Model
	ID          types.SnowflakeID `json:"id" gorm:"primaryKey"`
	InboundID   types.SnowflakeID `json:"inbound_id" gorm:"index"`
	ContainerNo string            `json:"container_no"`
	CreatedBy   int
	UpdatedBy   int

	Items []InboundItem `gorm:"foreignKey:ContainerID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

type InboundItem struct {
	gorm.Model
	ID          types.SnowflakeID `json:"id" gorm:"primaryKey"`
	InboundID   types.SnowflakeID `json:"inbound_id" gorm:"index"`
	ContainerID types.SnowflakeID `json:"container_id" gorm:"index"`
	ItemCode    string            `json:"item_code"`
	ExpectedQty int               `json:"expected_qty"`
	ReceivedQty int               `json:"received_qty" gorm:"default:0"`
	PutawayQty  int               `json:"putaway_qty" gorm:"default:0"`
	UnitCost    decimal.Decimal   `json:"unit_cost" gorm:"type:decimal(18,4)"`
	CreatedBy   int
	UpdatedBy   int
}

// InboundLine is one receive event against an InboundItem: the actual
// batch/DOT scanned at the dock. Put-away consumes lines, not items.
type InboundLine struct {
	gorm.Model
	ID            types.SnowflakeID `json:"id" gorm:"primaryKey"`
	InboundID     types.SnowflakeID `json:"inbound_id" gorm:"index"`
	InboundItemID types.SnowflakeID `json:"inbound_item_id" gorm:"index"`
	ItemCode      string            `json:"item_code"`
	BatchNo       string            `json:"batch_no"`
	DotCode       string            `json:"dot_code"`
	Quantity      int               `json:"quantity"`
	PutawayQty    int               `json:"putaway_qty" gorm:"default:0"`
	UnitCost      decimal.Decimal   `json:"unit_cost" gorm:"type:decimal(18,4)"`
	StickerCodes  string            `json:"sticker_codes" gorm:"type:text"` // comma separated
	CreatedBy     int
	UpdatedBy     int
}

type InboundPutaway struct {
	gorm.Model
	ID            types.SnowflakeID `json:"id" gorm:"primaryKey"`
	InboundLineID types.SnowflakeID `json:"inbound_line_id" gorm:"index"`
	LocationCode  string            `json:"location_code"`
	Quantity      int               `json:"quantity"`
	LotID         types.SnowflakeID `json:"lot_id"`
	CreatedBy     int
}
