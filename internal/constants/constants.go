package constants

// 推广码规则常量
const (
	ReferralCodeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ReferralCodeLength      = 8
	ReferralCodeMinLength   = 6
	ReferralCodeMaxLength   = 12
	ReferralCodeMaxAttempts = 8
)

// 里程碑奖励默认常量
const (
	RewardMilestoneDefault = 12
)

// 奖励状态常量
const (
	RewardStatusPending = "pending"
	RewardStatusGranted = "granted"
)

// 通知类型常量
const (
	NotificationKindReferralRegistered = "referral_registered"
	NotificationKindRewardMilestone    = "reward_milestone"
	NotificationKindNewsPublished      = "news_published"
)

// 文章类型常量
const (
	PostTypeNews         = "news"
	PostTypeAnnouncement = "announcement"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskNotificationDispatch = "notification:dispatch"
	TaskMilestoneCheck       = "referral:milestone_check"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "r23"
)
