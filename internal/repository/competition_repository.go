package repository

import (
	"context"
	"time"

	"taskora_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// CompetitionRepository 竞赛协调存储的Redis实现。
// 每次调用都带独立超时，网络故障以 util.StoreError 形式上抛，
// 与业务层的七种提交结果严格分离。
type CompetitionRepository struct {
	Redis     *redis.Client
	OpTimeout time.Duration
}

func NewCompetitionRepository(rdb *redis.Client, opTimeout time.Duration) *CompetitionRepository {
	if opTimeout <= 0 {
		opTimeout = 2 * time.Second
	}
	return &CompetitionRepository{
		Redis:     rdb,
		OpTimeout: opTimeout,
	}
}

func (r *CompetitionRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.OpTimeout)
}

// Get 返回值和键是否存在
func (r *CompetitionRepository) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	val, err := r.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, util.NewStoreError("GET", key, err)
	}
	return val, true, nil
}

func (r *CompetitionRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.Redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return util.NewStoreError("SET", key, err)
	}
	return nil
}

// SetNX 原子的set-if-absent，租约式互斥和尝试标记都依赖它
func (r *CompetitionRepository) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	acquired, err := r.Redis.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, util.NewStoreError("SETNX", key, err)
	}
	return acquired, nil
}

func (r *CompetitionRepository) Del(ctx context.Context, key string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.Redis.Del(ctx, key).Err(); err != nil {
		return util.NewStoreError("DEL", key, err)
	}
	return nil
}

func (r *CompetitionRepository) RPush(ctx context.Context, key, value string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.Redis.RPush(ctx, key, value).Err(); err != nil {
		return util.NewStoreError("RPUSH", key, err)
	}
	return nil
}

func (r *CompetitionRepository) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	vals, err := r.Redis.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, util.NewStoreError("LRANGE", key, err)
	}
	return vals, nil
}

func (r *CompetitionRepository) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.Redis.Expire(ctx, key, ttl).Err(); err != nil {
		return util.NewStoreError("EXPIRE", key, err)
	}
	return nil
}
