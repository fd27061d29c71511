package repository

import (
	"taskora_backend/internal/model"

	"gorm.io/gorm"
)

type StatusRepository struct {
	DB *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{DB: db}
}

func (r *StatusRepository) CreateMany(statuses []model.Status) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range statuses {
			if err := tx.Create(&statuses[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *StatusRepository) FindByUUID(uuid string) (*model.Status, error) {
	var status model.Status
	err := r.DB.First(&status, "id = ?", uuid).Error
	return &status, err
}

func (r *StatusRepository) FindAll() ([]*model.Status, error) {
	var statuses []*model.Status
	err := r.DB.Order("`order`").Find(&statuses).Error
	return statuses, err
}

func (r *StatusRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Status{}).Count(&count).Error
	return count, err
}
