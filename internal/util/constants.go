package util

import "time"

const (
	// CacheTTL 列表缓存有效期
	CacheTTL = 5 * time.Minute

	// OtpTTL 找回密码验证码有效期
	OtpTTL = 10 * time.Minute

	// VerifyEmailTTL 邮箱验证链接有效期
	VerifyEmailTTL = 24 * time.Hour

	// StaleStateHorizon 竞赛相关键的最大存活时间，防止遗留状态跨活动残留
	StaleStateHorizon = 24 * time.Hour
)
