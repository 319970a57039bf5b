package repositories

import (
	"errors"

	"wms-core/models"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(p *models.Product) error {
	return r.db.Create(p).Error
}

func (r *ProductRepository) Update(p *models.Product) error {
	return r.db.Save(p).Error
}

func (r *ProductRepository) GetByCode(itemCode string) (*models.Product, error) {
	var p models.Product
	err := r.db.Where("item_code = ?", itemCode).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) List() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("item_code").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
