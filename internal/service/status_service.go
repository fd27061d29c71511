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

const statusesCacheKey = "statuses"

// StatusService 全局状态字典，读多写少
type StatusService struct {
	StatusRepo *repository.StatusRepository
	Cache      Cache
}

func NewStatusService(statusRepo *repository.StatusRepository, cache Cache) *StatusService {
	return &StatusService{
		StatusRepo: statusRepo,
		Cache:      cache,
	}
}

func (s *StatusService) CreateMany(ctx context.Context, statuses []model.Status) error {
	if err := s.StatusRepo.CreateMany(statuses); err != nil {
		return err
	}

	if err := s.Cache.Delete(ctx, statusesCacheKey); err != nil {
		logger.Log.Warn("status cache invalidation failed", zap.Error(err))
	}
	return nil
}

func (s *StatusService) Get(uuid string) (*model.Status, error) {
	status, err := s.StatusRepo.FindByUUID(uuid)
	if err != nil {
		return nil, util.ErrStatusNotFound
	}
	return status, nil
}

func (s *StatusService) List(ctx context.Context) ([]*model.Status, error) {
	if cached, ok, err := s.Cache.Get(ctx, statusesCacheKey); err == nil && ok {
		var statuses []*model.Status
		if err := json.Unmarshal([]byte(cached), &statuses); err == nil {
			return statuses, nil
		}
	}

	statuses, err := s.StatusRepo.FindAll()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(statuses); err == nil {
		if err := s.Cache.Set(ctx, statusesCacheKey, string(data), util.CacheTTL); err != nil {
			logger.Log.Warn("status list cache write failed", zap.Error(err))
		}
	}

	return statuses, nil
}
