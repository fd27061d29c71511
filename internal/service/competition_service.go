package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"taskora_backend/internal/config"
	"taskora_backend/internal/model"
	"taskora_backend/internal/util"
	"taskora_backend/pkg/logger"
	"taskora_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// CompetitionStore 竞赛引擎对协调存储的最小要求。
// 生产环境由 repository.CompetitionRepository(Redis) 实现，
// 引擎只依赖该契约：每个键上的 SetNX / RPush 是原子的。
type CompetitionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
	RPush(ctx context.Context, key, value string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// WinnerNotifier 中奖通知，尽力而为：失败只记录日志，绝不回滚名单
type WinnerNotifier interface {
	NotifyWinner(email, name string) error
}

// WinnerLookup 异步通知时按uuid补全邮箱和昵称
type WinnerLookup interface {
	FindByUUID(uuid string) (*model.User, error)
}

// SubmissionOutcome 提交的七种确定性结果，属于正常业务返回，
// 基础设施故障走 error 通道，两者不混用。
type SubmissionOutcome string

const (
	OutcomeNotStarted      SubmissionOutcome = "not_started"
	OutcomeEnded           SubmissionOutcome = "challenge_ended"
	OutcomeAlreadyAnswered SubmissionOutcome = "already_answered"
	OutcomeNotWinner       SubmissionOutcome = "not_winner"
	OutcomeRetryLater      SubmissionOutcome = "retry_later"
	OutcomeTooLate         SubmissionOutcome = "too_late"
	OutcomeWinner          SubmissionOutcome = "winner"
)

const (
	answerKey  = "competition:answer"
	runKey     = "competition:run"
	endedKey   = "competition:ended"
	winnersKey = "competition:winners"
	lockKey    = "competition:lock:winners"
)

type CompetitionService struct {
	Store    CompetitionStore
	Users    WinnerLookup
	Notifier WinnerNotifier

	mu  sync.RWMutex
	cfg config.CompetitionConfig
}

func NewCompetitionService(store CompetitionStore, users WinnerLookup, notifier WinnerNotifier, cfg config.CompetitionConfig) *CompetitionService {
	return &CompetitionService{
		Store:    store,
		Users:    users,
		Notifier: notifier,
		cfg:      cfg,
	}
}

// SetConfig 配置热加载入口，影响后续提交的答案和名额
func (s *CompetitionService) SetConfig(cfg config.CompetitionConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *CompetitionService) snapshot() config.CompetitionConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *CompetitionService) lockLease() time.Duration {
	return time.Duration(s.snapshot().LockLeaseMs) * time.Millisecond
}

func attemptKey(run, userUUID string) string {
	return fmt.Sprintf("competition:attempted:%s:%s", run, userUUID)
}

// StartChallenge 开启（或重开）一轮竞赛：写入正确答案和新的轮次ID，
// 清空中奖名单和结束标记。所有键都带24小时过期，防止遗留状态。
func (s *CompetitionService) StartChallenge(ctx context.Context) error {
	cfg := s.snapshot()

	if err := s.Store.Set(ctx, answerKey, strconv.Itoa(cfg.CorrectAnswer), util.StaleStateHorizon); err != nil {
		return err
	}
	if err := s.Store.Set(ctx, runKey, model.GenerateUUID(), util.StaleStateHorizon); err != nil {
		return err
	}
	if err := s.Store.Del(ctx, winnersKey); err != nil {
		return err
	}
	if err := s.Store.Del(ctx, endedKey); err != nil {
		return err
	}

	logger.Log.Info("challenge started", zap.Int("winnerCap", cfg.WinnerCap))
	return nil
}

// EndChallenge 结束竞赛，此后所有提交一律返回 challenge_ended
func (s *CompetitionService) EndChallenge(ctx context.Context) error {
	if err := s.Store.Set(ctx, endedKey, "true", util.StaleStateHorizon); err != nil {
		return err
	}
	logger.Log.Info("challenge ended")
	return nil
}

// IsActive 只读：是否有一轮竞赛正在进行
func (s *CompetitionService) IsActive(ctx context.Context) (bool, error) {
	_, ok, err := s.Store.Get(ctx, answerKey)
	return ok, err
}

// HasEnded 只读：结束标记是否已设置
func (s *CompetitionService) HasEnded(ctx context.Context) (bool, error) {
	_, ok, err := s.Store.Get(ctx, endedKey)
	return ok, err
}

// GetWinners 无锁读取当前中奖名单，读不阻塞写
func (s *CompetitionService) GetWinners(ctx context.Context) ([]string, error) {
	return s.Store.LRange(ctx, winnersKey, 0, -1)
}

// Submit 处理一次答题提交，按固定顺序评估：
// 未开始 -> 已结束 -> 已答过 -> 判卷 -> 抢占名单锁 -> 容量检查 -> 追加名单。
//
// 尝试标记在判卷之前以 SetNX 原子占用，因此同一用户并发重复提交
// 最多只有一次进入评估；代价是拿到 retry_later 的用户也消耗了
// 唯一一次机会，这是设计上接受的取舍。
func (s *CompetitionService) Submit(ctx context.Context, userUUID string, answerID int) (SubmissionOutcome, error) {
	outcome, err := s.process(ctx, userUUID, answerID)
	if err != nil {
		logger.Log.Error("submission failed on coordination store",
			zap.String("user", userUUID),
			zap.Error(err),
		)
		return "", err
	}

	monitoring.SubmissionCounter.WithLabelValues(string(outcome)).Inc()

	if outcome == OutcomeWinner {
		s.notifyAsync(userUUID)
	}
	return outcome, nil
}

func (s *CompetitionService) process(ctx context.Context, userUUID string, answerID int) (SubmissionOutcome, error) {
	answerVal, ok, err := s.Store.Get(ctx, answerKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return OutcomeNotStarted, nil
	}

	ended, err := s.HasEnded(ctx)
	if err != nil {
		return "", err
	}
	if ended {
		return OutcomeEnded, nil
	}

	run, ok, err := s.Store.Get(ctx, runKey)
	if err != nil {
		return "", err
	}
	if !ok {
		// 答案键还在而轮次键已过期，视为未开始
		return OutcomeNotStarted, nil
	}

	// 先占用唯一尝试名额，再判卷
	firstAttempt, err := s.Store.SetNX(ctx, attemptKey(run, userUUID), "true", util.StaleStateHorizon)
	if err != nil {
		return "", err
	}
	if !firstAttempt {
		return OutcomeAlreadyAnswered, nil
	}

	correctAnswer, convErr := strconv.Atoi(answerVal)
	if convErr != nil {
		return "", util.NewStoreError("GET", answerKey, fmt.Errorf("malformed value %q", answerVal))
	}
	if correctAnswer != answerID {
		return OutcomeNotWinner, nil
	}

	// 单次尝试、不自旋：锁被占就把重试交还给调用方
	acquired, err := s.Store.SetNX(ctx, lockKey, "locked", s.lockLease())
	if err != nil {
		return "", err
	}
	if !acquired {
		monitoring.LockContentionCounter.Inc()
		return OutcomeRetryLater, nil
	}

	return func() (SubmissionOutcome, error) {
		// 无条件释放；用独立context，调用方超时不能把锁漏在那里
		defer func() {
			if delErr := s.Store.Del(context.Background(), lockKey); delErr != nil {
				logger.Log.Error("failed to release admission lock", zap.Error(delErr))
			}
		}()
		return s.admit(ctx, userUUID)
	}()
}

// admit 临界区：容量检查 + 去重 + 追加，保持尽可能短
func (s *CompetitionService) admit(ctx context.Context, userUUID string) (SubmissionOutcome, error) {
	winners, err := s.Store.LRange(ctx, winnersKey, 0, -1)
	if err != nil {
		return "", err
	}

	if len(winners) >= s.snapshot().WinnerCap {
		return OutcomeTooLate, nil
	}

	// 防御性去重：正常流程被尝试标记挡住，不应走到这里
	for _, w := range winners {
		if w == userUUID {
			return OutcomeWinner, nil
		}
	}

	if err := s.Store.RPush(ctx, winnersKey, userUUID); err != nil {
		return "", err
	}
	if err := s.Store.Expire(ctx, winnersKey, util.StaleStateHorizon); err != nil {
		return "", err
	}

	return OutcomeWinner, nil
}

func (s *CompetitionService) notifyAsync(userUUID string) {
	if s.Notifier == nil || s.Users == nil {
		return
	}

	// 通知在名单落定之后异步发出，慢或失败都不影响已提交的结果
	go func() {
		user, err := s.Users.FindByUUID(userUUID)
		if err != nil {
			logger.Log.Error("winner lookup failed",
				zap.String("user", userUUID),
				zap.Error(err),
			)
			return
		}

		if err := s.Notifier.NotifyWinner(user.Email, user.Name); err != nil {
			logger.Log.Error("winner notification failed",
				zap.String("user", userUUID),
				zap.Error(err),
			)
		}
	}()
}
