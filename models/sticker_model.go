package models

import (
	"wms-core/types"

	"gorm.io/gorm"
)

// Sticker is one scan code per physical unit. Codes are immutable once
// issued and never reused.
type Sticker struct {
	gorm.Model
	Code       string            `json:"code" gorm:"unique;not null"`
	LotID      types.SnowflakeID `json:"lot_id" gorm:"index"`
	OutboundID types.SnowflakeID `json:"outbound_id" gorm:"default:null"`
	Status     string            `json:"status" gorm:"default:'active'"` // active, picked, delivered, returned, void
	CreatedBy  int
	UpdatedBy  int
}
