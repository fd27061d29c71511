package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"taskora_backend/internal/config"
	"taskora_backend/internal/model"
	"taskora_backend/internal/repository"
	"taskora_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB 每个测试一个独立的内存库
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Status{},
		&model.Project{},
		&model.Task{},
		&model.Tag{},
	))
	return db
}

// fakeCache 内存缓存，测试里兼作token存储
type fakeCache struct {
	mu sync.Mutex
	kv map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{kv: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.kv[key]
	return v, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kv[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.kv, key)
	return nil
}

func (f *fakeCache) findByPrefix(prefix string) (key, value string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range f.kv {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			return k, v, true
		}
	}
	return "", "", false
}

// fakeMailer 捕获外发邮件内容
type fakeMailer struct {
	verifications chan string
	otps          chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		verifications: make(chan string, 4),
		otps:          make(chan string, 4),
	}
}

func (f *fakeMailer) SendVerificationEmail(email, name, verifyURL string) error {
	f.verifications <- verifyURL
	return nil
}

func (f *fakeMailer) SendOtpEmail(email, name, otp string) error {
	f.otps <- otp
	return nil
}

func authTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Mode:        "debug",
			FrontendURL: "http://localhost:5173",
		},
		JWT: config.JWTConfig{
			Secret:     "0123456789abcdef0123456789abcdef",
			ExpireTime: time.Hour,
		},
	}
}

func newAuthService(t *testing.T) (*AuthService, *fakeCache, *fakeMailer) {
	db := openTestDB(t)
	cache := newFakeCache()
	mailer := newFakeMailer()
	svc := NewAuthService(repository.NewUserRepository(db), cache, mailer, authTestConfig())
	return svc, cache, mailer
}

func TestRegisterCreatesUserWithDefaults(t *testing.T) {
	svc, _, mailer := newAuthService(t)

	user := &model.User{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Role:     model.RoleUser,
	}
	require.NoError(t, svc.Register(user))
	require.NotEmpty(t, user.ID)

	// 密码必须已哈希
	assert.NotEqual(t, "s3cret-pass", user.Password)

	var projectCount, taskCount int64
	svc.UserRepo.DB.Model(&model.Project{}).Where("user_uuid = ?", user.ID).Count(&projectCount)
	svc.UserRepo.DB.Model(&model.Task{}).Where("user_uuid = ?", user.ID).Count(&taskCount)
	assert.Equal(t, int64(1), projectCount)
	assert.Equal(t, int64(2), taskCount)

	// 验证邮件异步发出
	select {
	case url := <-mailer.verifications:
		assert.Contains(t, url, "/verify-email?token=")
	case <-time.After(2 * time.Second):
		t.Fatal("verification email was not sent")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)

	first := &model.User{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"}
	require.NoError(t, svc.Register(first))

	second := &model.User{Name: "Imposter", Email: "alice@example.com", Password: "other-pass"}
	err := svc.Register(second)
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthService(t)

	user := &model.User{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"}
	require.NoError(t, svc.Register(user))

	token, err := svc.Login("alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, authTestConfig().JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserUUID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthService(t)

	user := &model.User{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"}
	require.NoError(t, svc.Register(user))

	_, err := svc.Login("alice@example.com", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestVerifyEmail(t *testing.T) {
	svc, cache, mailer := newAuthService(t)
	ctx := context.Background()

	user := &model.User{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"}
	require.NoError(t, svc.Register(user))

	select {
	case <-mailer.verifications:
	case <-time.After(2 * time.Second):
		t.Fatal("verification email was not sent")
	}

	key, _, ok := cache.findByPrefix("verify-email:")
	require.True(t, ok)
	token := key[len("verify-email:"):]

	require.NoError(t, svc.VerifyEmail(ctx, token))

	stored, err := svc.UserRepo.FindByUUID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)

	// token一次性使用
	err = svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, util.ErrTokenInvalid)
}

func TestVerifyEmailInvalidToken(t *testing.T) {
	svc, _, _ := newAuthService(t)
	err := svc.VerifyEmail(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, util.ErrTokenInvalid)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	ctx := context.Background()

	user := &model.User{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"}
	require.NoError(t, svc.Register(user))

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

	var otp string
	select {
	case otp = <-mailer.otps:
	case <-time.After(2 * time.Second):
		t.Fatal("OTP email was not sent")
	}
	require.Len(t, otp, 6)

	require.NoError(t, svc.ResetPassword(ctx, otp, "brand-new-pass"))

	_, err := svc.Login("alice@example.com", "s3cret-pass")
	assert.Error(t, err)

	_, err = svc.Login("alice@example.com", "brand-new-pass")
	assert.NoError(t, err)

	// 验证码一次性使用
	err = svc.ResetPassword(ctx, otp, "another-pass")
	assert.ErrorIs(t, err, util.ErrOtpInvalid)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, mailer := newAuthService(t)

	// 不暴露邮箱是否存在
	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))

	select {
	case <-mailer.otps:
		t.Fatal("no OTP should be sent for unknown email")
	case <-time.After(100 * time.Millisecond):
	}
}
