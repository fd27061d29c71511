package repository

import (
	"taskora_backend/internal/model"

	"gorm.io/gorm"
)

type TagRepository struct {
	DB *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{DB: db}
}

func (r *TagRepository) Create(tag *model.Tag) error {
	return r.DB.Create(tag).Error
}

func (r *TagRepository) FindByUUID(uuid, userUUID string) (*model.Tag, error) {
	var tag model.Tag
	err := r.DB.Where("id = ? AND user_uuid = ?", uuid, userUUID).First(&tag).Error
	return &tag, err
}

func (r *TagRepository) FindByUUIDs(uuids []string, userUUID string) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.DB.Where("id IN ? AND user_uuid = ?", uuids, userUUID).Find(&tags).Error
	return tags, err
}

func (r *TagRepository) FindByUser(userUUID string) ([]*model.Tag, error) {
	var tags []*model.Tag
	err := r.DB.Where("user_uuid = ?", userUUID).Order("name").Find(&tags).Error
	return tags, err
}

func (r *TagRepository) Update(tag *model.Tag) error {
	return r.DB.Save(tag).Error
}

func (r *TagRepository) Delete(uuid, userUUID string) error {
	return r.DB.Where("id = ? AND user_uuid = ?", uuid, userUUID).Delete(&model.Tag{}).Error
}
