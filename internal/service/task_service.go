package service

import (
	"context"
	"encoding/json"
	"time"

	"taskora_backend/internal/model"
	"taskora_backend/internal/repository"
	"taskora_backend/internal/util"
	"taskora_backend/pkg/logger"

	"go.uber.org/zap"
)

// TaskService 任务CRUD：校验项目归属、状态存在、标签归属
type TaskService struct {
	TaskRepo    *repository.TaskRepository
	ProjectRepo *repository.ProjectRepository
	StatusRepo  *repository.StatusRepository
	TagRepo     *repository.TagRepository
	Cache       Cache
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	statusRepo *repository.StatusRepository,
	tagRepo *repository.TagRepository,
	cache Cache,
) *TaskService {
	return &TaskService{
		TaskRepo:    taskRepo,
		ProjectRepo: projectRepo,
		StatusRepo:  statusRepo,
		TagRepo:     tagRepo,
		Cache:       cache,
	}
}

func tasksCacheKey(userUUID string) string {
	return "tasks:" + userUUID
}

// CreateTaskInput 创建/更新任务的业务入参
type CreateTaskInput struct {
	Name        string
	Description string
	DueDate     *time.Time
	ProjectUUID string
	StatusUUID  string
	TagUUIDs    []string
}

func (s *TaskService) Create(ctx context.Context, userUUID string, input CreateTaskInput) (*model.Task, error) {
	if _, err := s.ProjectRepo.FindByUUID(input.ProjectUUID, userUUID); err != nil {
		return nil, util.ErrProjectNotFound
	}

	if input.StatusUUID != "" {
		if _, err := s.StatusRepo.FindByUUID(input.StatusUUID); err != nil {
			return nil, util.ErrStatusNotFound
		}
	}

	tags, err := s.resolveTags(input.TagUUIDs, userUUID)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Name:        input.Name,
		Description: input.Description,
		DueDate:     input.DueDate,
		UserUUID:    userUUID,
		ProjectUUID: input.ProjectUUID,
		StatusUUID:  input.StatusUUID,
		Tags:        tags,
	}

	if err := s.TaskRepo.Create(task); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userUUID)
	return task, nil
}

func (s *TaskService) Get(uuid, userUUID string) (*model.Task, error) {
	task, err := s.TaskRepo.FindByUUID(uuid, userUUID)
	if err != nil {
		return nil, util.ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userUUID string) ([]*model.Task, error) {
	key := tasksCacheKey(userUUID)

	if cached, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
		var tasks []*model.Task
		if err := json.Unmarshal([]byte(cached), &tasks); err == nil {
			return tasks, nil
		}
	}

	tasks, err := s.TaskRepo.FindByUser(userUUID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tasks); err == nil {
		if err := s.Cache.Set(ctx, key, string(data), util.CacheTTL); err != nil {
			logger.Log.Warn("task list cache write failed", zap.Error(err))
		}
	}

	return tasks, nil
}

func (s *TaskService) ListByProject(projectUUID, userUUID string) ([]*model.Task, error) {
	if _, err := s.ProjectRepo.FindByUUID(projectUUID, userUUID); err != nil {
		return nil, util.ErrProjectNotFound
	}
	return s.TaskRepo.FindByProject(projectUUID, userUUID)
}

func (s *TaskService) Update(ctx context.Context, uuid, userUUID string, input CreateTaskInput) (*model.Task, error) {
	task, err := s.TaskRepo.FindByUUID(uuid, userUUID)
	if err != nil {
		return nil, util.ErrTaskNotFound
	}

	if input.Name != "" {
		task.Name = input.Name
	}
	if input.Description != "" {
		task.Description = input.Description
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.StatusUUID != "" {
		if _, err := s.StatusRepo.FindByUUID(input.StatusUUID); err != nil {
			return nil, util.ErrStatusNotFound
		}
		task.StatusUUID = input.StatusUUID
	}
	if input.TagUUIDs != nil {
		tags, err := s.resolveTags(input.TagUUIDs, userUUID)
		if err != nil {
			return nil, err
		}
		task.Tags = tags
	}

	if err := s.TaskRepo.Update(task); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userUUID)
	return task, nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, uuid, userUUID, statusUUID string) error {
	if _, err := s.TaskRepo.FindByUUID(uuid, userUUID); err != nil {
		return util.ErrTaskNotFound
	}
	if _, err := s.StatusRepo.FindByUUID(statusUUID); err != nil {
		return util.ErrStatusNotFound
	}

	if err := s.TaskRepo.UpdateStatus(uuid, userUUID, statusUUID); err != nil {
		return err
	}

	s.invalidate(ctx, userUUID)
	return nil
}

func (s *TaskService) Delete(ctx context.Context, uuid, userUUID string) error {
	if _, err := s.TaskRepo.FindByUUID(uuid, userUUID); err != nil {
		return util.ErrTaskNotFound
	}

	if err := s.TaskRepo.Delete(uuid, userUUID); err != nil {
		return err
	}

	s.invalidate(ctx, userUUID)
	return nil
}

func (s *TaskService) resolveTags(tagUUIDs []string, userUUID string) ([]model.Tag, error) {
	if len(tagUUIDs) == 0 {
		return nil, nil
	}

	tags, err := s.TagRepo.FindByUUIDs(tagUUIDs, userUUID)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagUUIDs) {
		return nil, util.ErrTagNotFound
	}
	return tags, nil
}

func (s *TaskService) invalidate(ctx context.Context, userUUID string) {
	if err := s.Cache.Delete(ctx, tasksCacheKey(userUUID)); err != nil {
		logger.Log.Warn("task cache invalidation failed",
			zap.String("user", userUUID),
			zap.Error(err),
		)
	}
}
