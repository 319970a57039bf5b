package models

import (
	"wms-core/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReturnHeader struct {
	gorm.Model
	ID         types.SnowflakeID `json:"id" gorm:"primaryKey"`
	RmaNo      string            `json:"rma_no" gorm:"unique"`
	OutboundID types.SnowflakeID `json:"outbound_id" gorm:"index"`
	OrderNo    string            `json:"order_no"`
	WhsCode    string            `json:"whs_code"`
	Status     string            `json:"status" gorm:"default:'open'"`
	Remarks    string            `json:"remarks"`
	CreatedBy  int
	UpdatedBy  int

	Items []ReturnItem `gorm:"foreignKey:ReturnID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

type ReturnItem struct {
	gorm.Model
	ID           types.SnowflakeID `json:"id" gorm:"primaryKey"`
	ReturnID     types.SnowflakeID `json:"return_id" gorm:"index"`
	ItemCode     string            `json:"item_code"`
	DotCode      string            `json:"dot_code"`
	ExpectedQty  int               `json:"expected_qty"`
	ProcessedQty int               `json:"processed_qty" gorm:"default:0"`
	RestockedQty int               `json:"restocked_qty" gorm:"default:0"`
	CreatedBy    int
	UpdatedBy    int
}

type ReturnInspection struct {
	gorm.Model
	ReturnID     types.SnowflakeID `json:"return_id" gorm:"index"`
	StickerCode  string            `json:"sticker_code"`
	ItemCode     string            `json:"item_code"`
	Condition    string            `json:"condition"` // sellable, damaged, scrap, quarantine
	LocationCode string            `json:"location_code"`
	Restocked    bool              `json:"restocked" gorm:"default:false"`
	NewSticker   string            `json:"new_sticker"`
	Notes        string            `json:"notes"`
	UnitValue    decimal.Decimal   `json:"unit_value" gorm:"type:decimal(18,4)"`
	CreatedBy    int
}
