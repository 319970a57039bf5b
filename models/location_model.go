package models

import (
	"gorm.io/gorm"
)

type Location struct {
	gorm.Model
	LocationCode string `json:"location_code" gorm:"unique"`
	WhsCode      string `json:"whs_code"`
	LocationType string `json:"location_type" gorm:"default:'bin'"` // bin, dock, staging
	Row          string `json:"row"`
	Bay          string `json:"bay"`
	Level        string `json:"level"`
	Bin          string `json:"bin"`
	Capacity     int    `json:"capacity" gorm:"default:0"` // 0 = uncapped
	IsBlocked    bool   `json:"is_blocked" gorm:"default:false"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}

type Warehouse struct {
	gorm.Model
	Code      string `json:"code" gorm:"unique"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}
