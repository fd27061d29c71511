package service

import (
	"context"
	"io"

	"taskora_backend/internal/model"
	"taskora_backend/internal/repository"
	"taskora_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Storage:  storage,
	}
}

func (s *UserService) GetByUUID(uuid string) (*model.User, error) {
	user, err := s.UserRepo.FindByUUID(uuid)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(uuid, name string) (*model.User, error) {
	user, err := s.UserRepo.FindByUUID(uuid)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if name != "" {
		user.Name = name
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar 上传头像并更新用户picture字段
func (s *UserService) UploadAvatar(ctx context.Context, uuid string, reader io.Reader, size int64, contentType, ext string) (string, error) {
	user, err := s.UserRepo.FindByUUID(uuid)
	if err != nil {
		return "", util.ErrUserNotFound
	}

	url, err := s.Storage.UploadAvatar(ctx, uuid, reader, size, contentType, ext)
	if err != nil {
		return "", err
	}

	user.Picture = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}

	return url, nil
}
