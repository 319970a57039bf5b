package models

import (
	"wms-core/types"

	"gorm.io/gorm"
)

// Lot is the persisted image of one ledger lot. Retired lots keep their row
// with quantity 0 for audit.
type Lot struct {
	gorm.Model
	ID           types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	ItemCode     string            `json:"item_code" gorm:"index"`
	BatchNo      string            `json:"batch_no"`
	DotCode      string            `json:"dot_code"`
	ExpiryDate   string            `json:"expiry_date"`
	WhsCode      string            `json:"whs_code" gorm:"index"`
	LocationCode string            `json:"location_code" gorm:"index"`
	Quantity     int               `json:"quantity" gorm:"default:0"`
	Status       string            `json:"status" gorm:"default:'active'"`
	Version      int               `json:"version" gorm:"default:0"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}

type StockMovement struct {
	gorm.Model
	TransType    string `json:"trans_type"` // receive, putaway, pick, restock, transfer, compensate
	RefNo        string `json:"ref_no"`
	ItemCode     string `json:"item_code"`
	BatchNo      string `json:"batch_no"`
	DotCode      string `json:"dot_code"`
	WhsCode      string `json:"whs_code"`
	FromWhsCode  string `json:"from_whs_code"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
	Quantity     int    `json:"quantity"`
	Reason       string `json:"reason"`
	CreatedBy    int
}
