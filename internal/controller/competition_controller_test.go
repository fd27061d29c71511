package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"taskora_backend/internal/config"
	"taskora_backend/internal/service"
	"taskora_backend/internal/util"
	"taskora_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// memStore 内存协调存储，failErr非空时所有操作直接报错
type memStore struct {
	mu      sync.Mutex
	kv      map[string]string
	lists   map[string][]string
	failErr error
}

func newMemStore() *memStore {
	return &memStore{kv: make(map[string]string), lists: make(map[string][]string)}
}

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return "", false, m.failErr
	}
	v, ok := m.kv[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.kv[key] = value
	return nil
}

func (m *memStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return false, m.failErr
	}
	if _, ok := m.kv[key]; ok {
		return false, nil
	}
	m.kv[key] = value
	return true, nil
}

func (m *memStore) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	delete(m.kv, key)
	delete(m.lists, key)
	return nil
}

func (m *memStore) RPush(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.lists[key] = append(m.lists[key], value)
	return nil
}

func (m *memStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	out := make([]string, len(m.lists[key]))
	copy(out, m.lists[key])
	return out, nil
}

func (m *memStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func asUser(userUUID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", &util.Claims{UserUUID: userUUID})
		c.Next()
	}
}

func newCompetitionRouter(store service.CompetitionStore, userUUID string) *gin.Engine {
	svc := service.NewCompetitionService(store, nil, nil, config.CompetitionConfig{
		CorrectAnswer: 3,
		WinnerCap:     2,
		LockLeaseMs:   5000,
		OpTimeoutMs:   2000,
	})
	c := NewCompetitionController(svc)

	router := gin.New()
	api := router.Group("/api/competition", asUser(userUUID))
	api.POST("/submit-answer", c.SubmitAnswer)
	api.GET("/winners", c.GetWinners)
	api.POST("/start", c.StartChallenge)
	api.POST("/end", c.EndChallenge)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func submitBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp.Data.(map[string]interface{})
	return data
}

func TestSubmitAnswerNotStarted(t *testing.T) {
	router := newCompetitionRouter(newMemStore(), "u1")

	w := doJSON(t, router, http.MethodPost, "/api/competition/submit-answer", `{"answerId":3}`)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestSubmitAnswerEnded(t *testing.T) {
	store := newMemStore()
	router := newCompetitionRouter(store, "u1")

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/competition/start", "").Code)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/competition/end", "").Code)

	w := doJSON(t, router, http.MethodPost, "/api/competition/submit-answer", `{"answerId":3}`)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestSubmitAnswerWinner(t *testing.T) {
	store := newMemStore()
	router := newCompetitionRouter(store, "u1")

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/competition/start", "").Code)

	w := doJSON(t, router, http.MethodPost, "/api/competition/submit-answer", `{"answerId":3}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	data := submitBody(t, w)
	assert.Equal(t, "winner", data["outcome"])
}

func TestSubmitAnswerWrongThenDuplicate(t *testing.T) {
	store := newMemStore()
	router := newCompetitionRouter(store, "u1")

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/competition/start", "").Code)

	w := doJSON(t, router, http.MethodPost, "/api/competition/submit-answer", `{"answerId":7}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "not_winner", submitBody(t, w)["outcome"])

	w = doJSON(t, router, http.MethodPost, "/api/competition/submit-answer", `{"answerId":3}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "already_answered", submitBody(t, w)["outcome"])
}

func TestSubmitAnswerLockContention(t *testing.T) {
	store := newMemStore()
	router := newCompetitionRouter(store, "u1")

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/competition/start", "").Code)

	// 锁被别的实例占着
	ok, err := store.SetNX(context.Background(), "competition:lock:winners", "locked", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	w := doJSON(t, router, http.MethodPost, "/api/competition/submit-answer", `{"answerId":3}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSubmitAnswerStoreFailure(t *testing.T) {
	store := newMemStore()
	router := newCompetitionRouter(store, "u1")

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/competition/start", "").Code)
	store.failErr = errors.New("connection refused")

	w := doJSON(t, router, http.MethodPost, "/api/competition/submit-answer", `{"answerId":3}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSubmitAnswerBadBody(t *testing.T) {
	router := newCompetitionRouter(newMemStore(), "u1")

	w := doJSON(t, router, http.MethodPost, "/api/competition/submit-answer", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetWinnersEmpty(t *testing.T) {
	router := newCompetitionRouter(newMemStore(), "u1")

	w := doJSON(t, router, http.MethodGet, "/api/competition/winners", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := submitBody(t, w)
	winners, ok := data["winners"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, winners)
}

func TestGetWinnersAfterWin(t *testing.T) {
	store := newMemStore()
	router := newCompetitionRouter(store, "u1")

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/competition/start", "").Code)
	require.Equal(t, http.StatusAccepted, doJSON(t, router, http.MethodPost, "/api/competition/submit-answer", `{"answerId":3}`).Code)

	w := doJSON(t, router, http.MethodGet, "/api/competition/winners", "")
	require.Equal(t, http.StatusOK, w.Code)

	winners := submitBody(t, w)["winners"].([]interface{})
	require.Len(t, winners, 1)
	assert.Equal(t, "u1", winners[0])
}
