package models

import (
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	ItemCode        string `json:"item_code" gorm:"unique" validate:"required"`
	ArticleNo       string `json:"article_no"`
	ItemName        string `json:"item_name"`
	Uom             string `json:"uom" gorm:"default:'PCS'"`
	ShelfLifeMonths int    `json:"shelf_life_months" gorm:"default:0"`
	CreatedBy       int
	UpdatedBy       int
	DeletedBy       int
}
