package repository

import (
	"time"

	"taskora_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

// CreateWithDefaults 注册时在同一事务内创建用户、默认项目和引导任务
func (r *UserRepository) CreateWithDefaults(user *model.User, project *model.Project, tasks []model.Task) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		project.UserUUID = user.ID
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		for i := range tasks {
			tasks[i].UserUUID = user.ID
			tasks[i].ProjectUUID = project.ID
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) FindByUUID(uuid string) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, "id = ?", uuid).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdatePassword(uuid, hashedPassword string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", uuid).
		Update("password", hashedPassword).
		Error
}

func (r *UserRepository) MarkVerified(uuid string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", uuid).
		Update("is_verified", true).
		Error
}

func (r *UserRepository) UpdateLastLogin(uuid string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", uuid).
		Update("last_login", time.Now()).
		Error
}

func (r *UserRepository) Delete(uuid string) error {
	return r.DB.Delete(&model.User{}, "id = ?", uuid).Error
}
