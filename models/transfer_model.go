package models

import (
	"wms-core/types"

	"gorm.io/gorm"
)

type TransferHeader struct {
	gorm.Model
	ID         types.SnowflakeID `json:"id" gorm:"primaryKey"`
	TransferNo string            `json:"transfer_no" gorm:"unique"`
	WhsCode    string            `json:"whs_code"`
	ToWhsCode  string            `json:"to_whs_code"`
	Status     string            `json:"status" gorm:"default:'pending'"`
	Remarks    string            `json:"remarks"`
	CreatedBy  int
	UpdatedBy  int

	Items []TransferItem `gorm:"foreignKey:TransferID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

type TransferItem struct {
	gorm.Model
	ID           types.SnowflakeID `json:"id" gorm:"primaryKey"`
	TransferID   types.SnowflakeID `json:"transfer_id" gorm:"index"`
	LotID        types.SnowflakeID `json:"lot_id"`
	DestLotID    types.SnowflakeID `json:"dest_lot_id"`
	ItemCode     string            `json:"item_code"`
	Quantity     int               `json:"quantity"`
	FromLocation string            `json:"from_location"`
	ToLocation   string            `json:"to_location"`
	CreatedBy    int
}
