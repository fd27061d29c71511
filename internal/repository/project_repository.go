package repository

import (
	"taskora_backend/internal/model"

	"gorm.io/gorm"
)

type ProjectRepository struct {
	DB *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

func (r *ProjectRepository) Create(project *model.Project) error {
	return r.DB.Create(project).Error
}

func (r *ProjectRepository) FindByUUID(uuid, userUUID string) (*model.Project, error) {
	var project model.Project
	err := r.DB.Where("id = ? AND user_uuid = ?", uuid, userUUID).First(&project).Error
	return &project, err
}

func (r *ProjectRepository) FindByUser(userUUID string) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.DB.Where("user_uuid = ?", userUUID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(project *model.Project) error {
	return r.DB.Save(project).Error
}

// Delete 连同项目下的任务一起删除
func (r *ProjectRepository) Delete(uuid, userUUID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_uuid = ? AND user_uuid = ?", uuid, userUUID).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_uuid = ?", uuid, userUUID).Delete(&model.Project{}).Error
	})
}
