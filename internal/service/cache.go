package service

import (
	"context"
	"time"
)

// Cache 列表缓存端口，生产实现为 repository.RedisCache。
// 缓存失败从不影响主流程，调用方只记日志。
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
