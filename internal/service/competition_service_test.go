package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"taskora_backend/internal/config"
	"taskora_backend/internal/model"
	"taskora_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// fakeStore 内存版协调存储，单把锁保证每个操作的原子性，
// 与Redis单线程执行模型的语义一致。
type fakeStore struct {
	mu    sync.Mutex
	kv    map[string]string
	lists map[string][]string

	// 按操作注入故障
	failGet    error
	failSet    error
	failSetNX  error
	failDel    error
	failRPush  error
	failLRange error

	delCalls map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		kv:       make(map[string]string),
		lists:    make(map[string][]string),
		delCalls: make(map[string]int),
	}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return "", false, f.failGet
	}
	v, ok := f.kv[key]
	return v, ok, nil
}

func (f *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return f.failSet
	}
	f.kv[key] = value
	return nil
}

func (f *fakeStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSetNX != nil {
		return false, f.failSetNX
	}
	if _, ok := f.kv[key]; ok {
		return false, nil
	}
	f.kv[key] = value
	return true, nil
}

func (f *fakeStore) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delCalls[key]++
	if f.failDel != nil {
		return f.failDel
	}
	delete(f.kv, key)
	delete(f.lists, key)
	return nil
}

func (f *fakeStore) RPush(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRPush != nil {
		return f.failRPush
	}
	f.lists[key] = append(f.lists[key], value)
	return nil
}

func (f *fakeStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLRange != nil {
		return nil, f.failLRange
	}
	list := f.lists[key]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.kv[key]
	return ok
}

type fakeNotifier struct {
	called chan string
}

func (f *fakeNotifier) NotifyWinner(email, name string) error {
	f.called <- email
	return nil
}

type fakeLookup struct {
	users map[string]*model.User
}

func (f *fakeLookup) FindByUUID(uuid string) (*model.User, error) {
	u, ok := f.users[uuid]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func testConfig() config.CompetitionConfig {
	return config.CompetitionConfig{
		CorrectAnswer: 3,
		WinnerCap:     3,
		LockLeaseMs:   5000,
		OpTimeoutMs:   2000,
	}
}

func newTestService(store CompetitionStore) *CompetitionService {
	return NewCompetitionService(store, nil, nil, testConfig())
}

func TestSubmitBeforeStart(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	outcome, err := svc.Submit(context.Background(), "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotStarted, outcome)
}

func TestSubmitAfterEnd(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))
	require.NoError(t, svc.EndChallenge(ctx))

	outcome, err := svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeEnded, outcome)

	// 结束后即便答案正确也不占用尝试名额以外的资源
	ended, err := svc.HasEnded(ctx)
	require.NoError(t, err)
	assert.True(t, ended)
}

func TestSubmitWrongAnswer(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	outcome, err := svc.Submit(ctx, "u1", 4)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotWinner, outcome)

	// 答错也消耗掉唯一一次机会
	outcome, err = svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyAnswered, outcome)
}

func TestSubmitCorrectAnswerWins(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	outcome, err := svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWinner, outcome)

	winners, err := svc.GetWinners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, winners)

	// 名单锁不能残留
	assert.False(t, store.has("competition:lock:winners"))
}

func TestSubmitDuplicateAfterWin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	outcome, err := svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	require.Equal(t, OutcomeWinner, outcome)

	outcome, err = svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyAnswered, outcome)

	winners, err := svc.GetWinners(ctx)
	require.NoError(t, err)
	assert.Len(t, winners, 1)
}

func TestWinnerCapReached(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	for i := 0; i < 3; i++ {
		outcome, err := svc.Submit(ctx, fmt.Sprintf("winner-%d", i), 3)
		require.NoError(t, err)
		require.Equal(t, OutcomeWinner, outcome)
	}

	outcome, err := svc.Submit(ctx, "late-user", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeTooLate, outcome)

	winners, err := svc.GetWinners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"winner-0", "winner-1", "winner-2"}, winners)
}

func TestWinnersOrderPreserved(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	users := []string{"a", "b", "c"}
	for _, u := range users {
		_, err := svc.Submit(ctx, u, 3)
		require.NoError(t, err)
	}

	winners, err := svc.GetWinners(ctx)
	require.NoError(t, err)
	assert.Equal(t, users, winners)
}

func TestLockContention(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	// 预先占住名单锁，模拟另一个实例正在临界区内
	ok, err := store.SetNX(ctx, "competition:lock:winners", "locked", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	outcome, err := svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetryLater, outcome)

	// 抢锁失败也已消耗尝试名额
	outcome, err = svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyAnswered, outcome)

	// 不是自己拿到的锁，不许释放
	assert.True(t, store.has("competition:lock:winners"))
}

func TestLockReleasedOnAdmitFailure(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))
	store.failRPush = errors.New("connection reset")

	_, err := svc.Submit(ctx, "u1", 3)
	require.Error(t, err)

	// 临界区内出错，锁仍然要释放
	assert.False(t, store.has("competition:lock:winners"))
}

func TestRunKeyExpiredTreatedAsNotStarted(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))
	require.NoError(t, store.Del(ctx, "competition:run"))

	outcome, err := svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotStarted, outcome)
}

func TestMalformedAnswerValue(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))
	require.NoError(t, store.Set(ctx, "competition:answer", "not-a-number", time.Hour))

	_, err := svc.Submit(ctx, "u1", 3)
	assert.Error(t, err)
}

func TestStoreFailureSurfacesAsError(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))
	store.failGet = errors.New("i/o timeout")

	_, err := svc.Submit(ctx, "u1", 3)
	assert.Error(t, err)
}

func TestRestartResetsAttempts(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	outcome, err := svc.Submit(ctx, "u1", 4)
	require.NoError(t, err)
	require.Equal(t, OutcomeNotWinner, outcome)

	// 重开新一轮：轮次ID变了，旧的尝试标记不再挡路
	require.NoError(t, svc.StartChallenge(ctx))

	outcome, err = svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWinner, outcome)

	winners, err := svc.GetWinners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, winners)
}

func TestRestartClearsWinnersAndEndedFlag(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))
	_, err := svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	require.NoError(t, svc.EndChallenge(ctx))

	require.NoError(t, svc.StartChallenge(ctx))

	ended, err := svc.HasEnded(ctx)
	require.NoError(t, err)
	assert.False(t, ended)

	winners, err := svc.GetWinners(ctx)
	require.NoError(t, err)
	assert.Empty(t, winners)
}

func TestWinnerNotificationSent(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{called: make(chan string, 1)}
	lookup := &fakeLookup{users: map[string]*model.User{
		"u1": {UUIDBase: model.UUIDBase{ID: "u1"}, Name: "Alice", Email: "alice@example.com"},
	}}
	svc := NewCompetitionService(store, lookup, notifier, testConfig())
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	outcome, err := svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	require.Equal(t, OutcomeWinner, outcome)

	select {
	case email := <-notifier.called:
		assert.Equal(t, "alice@example.com", email)
	case <-time.After(2 * time.Second):
		t.Fatal("winner notification was not sent")
	}
}

func TestNotificationFailureDoesNotAffectOutcome(t *testing.T) {
	store := newFakeStore()
	// 查不到用户，通知流程只记日志
	svc := NewCompetitionService(store, &fakeLookup{users: map[string]*model.User{}}, &fakeNotifier{called: make(chan string, 1)}, testConfig())
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	outcome, err := svc.Submit(ctx, "ghost", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWinner, outcome)

	winners, err := svc.GetWinners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, winners)
}

func TestConfigHotReload(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	svc.SetConfig(config.CompetitionConfig{
		CorrectAnswer: 3,
		WinnerCap:     1,
		LockLeaseMs:   5000,
		OpTimeoutMs:   2000,
	})

	outcome, err := svc.Submit(ctx, "u1", 3)
	require.NoError(t, err)
	require.Equal(t, OutcomeWinner, outcome)

	// 名额降到1，第二个正确答案只能too_late
	outcome, err = svc.Submit(ctx, "u2", 3)
	require.NoError(t, err)
	assert.Equal(t, OutcomeTooLate, outcome)
}

func TestConcurrentSubmissions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	const attempts = 50
	outcomes := make([]SubmissionOutcome, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = svc.Submit(ctx, fmt.Sprintf("user-%d", i), 3)
		}(i)
	}
	wg.Wait()

	winnerCount := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		switch outcomes[i] {
		case OutcomeWinner:
			winnerCount++
		case OutcomeTooLate, OutcomeRetryLater:
		default:
			t.Fatalf("unexpected outcome %q", outcomes[i])
		}
	}

	winners, err := svc.GetWinners(ctx)
	require.NoError(t, err)

	// 名单绝不超容量，winner结果数与名单长度一致
	assert.LessOrEqual(t, len(winners), 3)
	assert.Equal(t, len(winners), winnerCount)

	seen := make(map[string]bool)
	for _, w := range winners {
		assert.False(t, seen[w], "duplicate winner %s", w)
		seen[w] = true
	}
}

func TestConcurrentSameUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.StartChallenge(ctx))

	const attempts = 20
	outcomes := make([]SubmissionOutcome, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], _ = svc.Submit(ctx, "same-user", 3)
		}(i)
	}
	wg.Wait()

	// 同一用户并发提交，至多一次通过尝试标记进入评估
	evaluated := 0
	for _, o := range outcomes {
		if o != OutcomeAlreadyAnswered {
			evaluated++
		}
	}
	assert.Equal(t, 1, evaluated)

	winners, err := svc.GetWinners(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(winners), 1)
}

func TestIsActive(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	active, err := svc.IsActive(ctx)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, svc.StartChallenge(ctx))

	active, err = svc.IsActive(ctx)
	require.NoError(t, err)
	assert.True(t, active)
}
