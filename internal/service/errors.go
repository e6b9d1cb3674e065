package service

import "errors"

// 服务层统一的业务错误，处理器按需映射为响应码。
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("原密码错误")

	ErrInvalidUserID           = errors.New("用户标识无效")
	ErrAlreadyRegistered       = errors.New("用户已加入推广计划")
	ErrInvalidReferrerCode     = errors.New("推荐码无效")
	ErrSelfReferralNotAllowed  = errors.New("不能使用自己的推荐码")
	ErrCodeGenerationExhausted = errors.New("推广码生成重试次数耗尽")
	ErrUserNotRegistered       = errors.New("用户尚未加入推广计划")

	ErrRewardAlreadyGranted = errors.New("奖励已发放")

	ErrNotificationPayloadInvalid = errors.New("通知载荷不合法")

	ErrSlugExists      = errors.New("slug 已存在")
	ErrInvalidPostType = errors.New("文章类型不合法")

	ErrCaptchaRequired      = errors.New("需要验证码")
	ErrCaptchaInvalid       = errors.New("验证码错误")
	ErrCaptchaConfigInvalid = errors.New("验证码配置不完整")
)
