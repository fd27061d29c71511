package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrProjectNotFound    = errors.New("project not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrStatusNotFound     = errors.New("status not found")
	ErrOtpInvalid         = errors.New("OTP无效或已过期")
	ErrTokenInvalid       = errors.New("token invalid or expired")
	ErrNotVerified        = errors.New("邮箱尚未验证")
)

// StoreError 协调存储（Redis）基础设施错误，与业务结果严格区分。
// 携带操作名和键便于排查故障。
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}
