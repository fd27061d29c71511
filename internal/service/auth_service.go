package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"taskora_backend/internal/config"
	"taskora_backend/internal/model"
	"taskora_backend/internal/repository"
	"taskora_backend/internal/util"
	"taskora_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Mailer 认证流程用到的外发邮件，全部异步尽力而为
type Mailer interface {
	SendVerificationEmail(email, name, verifyURL string) error
	SendOtpEmail(email, name, otp string) error
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Tokens   Cache
	Mail     Mailer
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, tokens Cache, mail Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Tokens:   tokens,
		Mail:     mail,
		Cfg:      cfg,
	}
}

// Register 创建用户并初始化默认项目和引导任务，随后异步发送验证邮件
func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)

	// 新用户的起步项目和任务
	project := &model.Project{
		Name:        "🚀 First Launch",
		Description: "Every great journey begins with a single step. Use this project to plan and achieve your first milestone!",
		Color:       "#007bff",
	}
	tasks := []model.Task{
		{Name: "📅 Plan Your Week", Description: "Sketch the tasks you want to finish this week."},
		{Name: "✅ Complete your first task", Description: "Mark this one as done to get going."},
	}

	if err := s.UserRepo.CreateWithDefaults(user, project, tasks); err != nil {
		return err
	}

	s.sendVerificationAsync(user)
	return nil
}

func (s *AuthService) sendVerificationAsync(user *model.User) {
	if s.Mail == nil {
		return
	}

	go func() {
		token := model.GenerateUUID()
		key := "verify-email:" + token
		if err := s.Tokens.Set(context.Background(), key, user.ID, util.VerifyEmailTTL); err != nil {
			logger.Log.Error("failed to store verification token", zap.Error(err))
			return
		}

		verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.Cfg.Server.FrontendURL, token)
		if err := s.Mail.SendVerificationEmail(user.Email, user.Name, verifyURL); err != nil {
			logger.Log.Error("failed to send verification email",
				zap.String("email", user.Email),
				zap.Error(err),
			)
		}
	}()
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	// 异步更新，不阻塞登录
	go s.UserRepo.UpdateLastLogin(user.ID)

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// VerifyEmail 校验邮件里的验证token并标记用户已验证
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	key := "verify-email:" + token
	userUUID, ok, err := s.Tokens.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrTokenInvalid
	}

	if err := s.UserRepo.MarkVerified(userUUID); err != nil {
		return err
	}

	s.Tokens.Delete(ctx, key)
	return nil
}

// ForgotPassword 生成6位验证码，哈希后存入Redis，明文只出现在邮件里
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		// 不暴露邮箱是否注册
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	otp, err := generateOtp()
	if err != nil {
		return err
	}

	key := "otp:" + hashToken(otp)
	if err := s.Tokens.Set(ctx, key, user.ID, util.OtpTTL); err != nil {
		return err
	}

	if s.Mail != nil {
		go func() {
			if err := s.Mail.SendOtpEmail(user.Email, user.Name, otp); err != nil {
				logger.Log.Error("failed to send OTP email",
					zap.String("email", user.Email),
					zap.Error(err),
				)
			}
		}()
	}
	return nil
}

// ResetPassword 验证码换新密码，验证码一次性使用
func (s *AuthService) ResetPassword(ctx context.Context, otp, newPassword string) error {
	key := "otp:" + hashToken(otp)
	userUUID, ok, err := s.Tokens.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrOtpInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.UserRepo.UpdatePassword(userUUID, string(hashedPassword)); err != nil {
		return err
	}

	s.Tokens.Delete(ctx, key)
	return nil
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByUUID(claims.UserUUID)
	return user
}

func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashToken(s string) string {
	h := sha256.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
