package service

import (
	"context"
	"encoding/json"

	"taskora_backend/internal/model"
	"taskora_backend/internal/repository"
	"taskora_backend/internal/util"
	"taskora_backend/pkg/logger"

	"go.uber.org/zap"
)

// ProjectService 项目CRUD，列表读走五分钟缓存
type ProjectService struct {
	ProjectRepo *repository.ProjectRepository
	Cache       Cache
}

func NewProjectService(projectRepo *repository.ProjectRepository, cache Cache) *ProjectService {
	return &ProjectService{
		ProjectRepo: projectRepo,
		Cache:       cache,
	}
}

func projectsCacheKey(userUUID string) string {
	return "projects:" + userUUID
}

func (s *ProjectService) Create(ctx context.Context, project *model.Project) error {
	if err := s.ProjectRepo.Create(project); err != nil {
		return err
	}
	s.invalidate(ctx, project.UserUUID)
	return nil
}

func (s *ProjectService) Get(uuid, userUUID string) (*model.Project, error) {
	project, err := s.ProjectRepo.FindByUUID(uuid, userUUID)
	if err != nil {
		return nil, util.ErrProjectNotFound
	}
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, userUUID string) ([]*model.Project, error) {
	key := projectsCacheKey(userUUID)

	if cached, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
		var projects []*model.Project
		if err := json.Unmarshal([]byte(cached), &projects); err == nil {
			return projects, nil
		}
	}

	projects, err := s.ProjectRepo.FindByUser(userUUID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(projects); err == nil {
		if err := s.Cache.Set(ctx, key, string(data), util.CacheTTL); err != nil {
			logger.Log.Warn("project list cache write failed", zap.Error(err))
		}
	}

	return projects, nil
}

func (s *ProjectService) Update(ctx context.Context, uuid, userUUID string, name, description, color string) (*model.Project, error) {
	project, err := s.ProjectRepo.FindByUUID(uuid, userUUID)
	if err != nil {
		return nil, util.ErrProjectNotFound
	}

	if name != "" {
		project.Name = name
	}
	if description != "" {
		project.Description = description
	}
	if color != "" {
		project.Color = color
	}

	if err := s.ProjectRepo.Update(project); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userUUID)
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, uuid, userUUID string) error {
	if _, err := s.ProjectRepo.FindByUUID(uuid, userUUID); err != nil {
		return util.ErrProjectNotFound
	}

	if err := s.ProjectRepo.Delete(uuid, userUUID); err != nil {
		return err
	}

	s.invalidate(ctx, userUUID)
	return nil
}

func (s *ProjectService) invalidate(ctx context.Context, userUUID string) {
	if err := s.Cache.Delete(ctx, projectsCacheKey(userUUID)); err != nil {
		logger.Log.Warn("project cache invalidation failed",
			zap.String("user", userUUID),
			zap.Error(err),
		)
	}
	// 项目变动会影响任务列表
	if err := s.Cache.Delete(ctx, tasksCacheKey(userUUID)); err != nil {
		logger.Log.Warn("task cache invalidation failed",
			zap.String("user", userUUID),
			zap.Error(err),
		)
	}
}
