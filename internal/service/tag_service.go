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

type TagService struct {
	TagRepo *repository.TagRepository
	Cache   Cache
}

func NewTagService(tagRepo *repository.TagRepository, cache Cache) *TagService {
	return &TagService{
		TagRepo: tagRepo,
		Cache:   cache,
	}
}

func tagsCacheKey(userUUID string) string {
	return "tags:" + userUUID
}

func (s *TagService) Create(ctx context.Context, tag *model.Tag) error {
	if err := s.TagRepo.Create(tag); err != nil {
		return err
	}
	s.invalidate(ctx, tag.UserUUID)
	return nil
}

func (s *TagService) List(ctx context.Context, userUUID string) ([]*model.Tag, error) {
	key := tagsCacheKey(userUUID)

	if cached, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
		var tags []*model.Tag
		if err := json.Unmarshal([]byte(cached), &tags); err == nil {
			return tags, nil
		}
	}

	tags, err := s.TagRepo.FindByUser(userUUID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tags); err == nil {
		if err := s.Cache.Set(ctx, key, string(data), util.CacheTTL); err != nil {
			logger.Log.Warn("tag list cache write failed", zap.Error(err))
		}
	}

	return tags, nil
}

func (s *TagService) Update(ctx context.Context, uuid, userUUID, name, color string) (*model.Tag, error) {
	tag, err := s.TagRepo.FindByUUID(uuid, userUUID)
	if err != nil {
		return nil, util.ErrTagNotFound
	}

	if name != "" {
		tag.Name = name
	}
	if color != "" {
		tag.Color = color
	}

	if err := s.TagRepo.Update(tag); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userUUID)
	return tag, nil
}

func (s *TagService) Delete(ctx context.Context, uuid, userUUID string) error {
	if _, err := s.TagRepo.FindByUUID(uuid, userUUID); err != nil {
		return util.ErrTagNotFound
	}

	if err := s.TagRepo.Delete(uuid, userUUID); err != nil {
		return err
	}

	s.invalidate(ctx, userUUID)
	return nil
}

func (s *TagService) invalidate(ctx context.Context, userUUID string) {
	if err := s.Cache.Delete(ctx, tagsCacheKey(userUUID)); err != nil {
		logger.Log.Warn("tag cache invalidation failed",
			zap.String("user", userUUID),
			zap.Error(err),
		)
	}
}
