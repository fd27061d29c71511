package repository

import (
	"time"

	"taskora_backend/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(task *model.Task) error {
	return r.DB.Create(task).Error
}

func (r *TaskRepository) FindByUUID(uuid, userUUID string) (*model.Task, error) {
	var task model.Task
	err := r.DB.Preload("Tags").Where("id = ? AND user_uuid = ?", uuid, userUUID).First(&task).Error
	return &task, err
}

func (r *TaskRepository) FindByUser(userUUID string) ([]*model.Task, error) {
	var tasks []*model.Task
	err := r.DB.Preload("Tags").Where("user_uuid = ?", userUUID).Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) FindByProject(projectUUID, userUUID string) ([]*model.Task, error) {
	var tasks []*model.Task
	err := r.DB.Preload("Tags").
		Where("project_uuid = ? AND user_uuid = ?", projectUUID, userUUID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) FindDueBetween(userUUID string, from, to time.Time) ([]*model.Task, error) {
	var tasks []*model.Task
	err := r.DB.Where("user_uuid = ? AND due_date >= ? AND due_date < ?", userUUID, from, to).
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Update(task *model.Task) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(task).Association("Tags").Replace(task.Tags); err != nil {
			return err
		}
		return tx.Save(task).Error
	})
}

func (r *TaskRepository) UpdateStatus(uuid, userUUID, statusUUID string) error {
	return r.DB.Model(&model.Task{}).
		Where("id = ? AND user_uuid = ?", uuid, userUUID).
		Update("status_uuid", statusUUID).
		Error
}

func (r *TaskRepository) Delete(uuid, userUUID string) error {
	return r.DB.Where("id = ? AND user_uuid = ?", uuid, userUUID).Delete(&model.Task{}).Error
}
