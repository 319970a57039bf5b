package repositories

import (
	"errors"

	"wms-core/models"

	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(l *models.Location) error {
	return r.db.Create(l).Error
}

func (r *LocationRepository) Update(l *models.Location) error {
	return r.db.Save(l).Error
}

func (r *LocationRepository) GetByCode(code string) (*models.Location, error) {
	var l models.Location
	err := r.db.Where("location_code = ?", code).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepository) List(whsCode string) ([]models.Location, error) {
	var locations []models.Location
	q := r.db.Order("location_code")
	if whsCode != "" {
		q = q.Where("whs_code = ?", whsCode)
	}
	if err := q.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}
