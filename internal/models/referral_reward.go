package models

import "time"

// ReferralReward 里程碑奖励表（每个用户每个里程碑至多一行）
type ReferralReward struct {
	ID             uint       `gorm:"primarykey" json:"id"`                                                           // 主键
	UserID         string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_rewards_user_milestone" json:"user_id"` // 推荐人用户标识
	MilestoneIndex int        `gorm:"not null;uniqueIndex:idx_rewards_user_milestone" json:"milestone_index"`         // 第几个里程碑（从 1 开始）
	Amount         Money      `gorm:"type:decimal(12,2);not null" json:"amount"`                                      // 奖励金额
	Status         string     `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`                  // 状态（pending/granted）
	GrantedAt      *time.Time `json:"granted_at"`                                                                     // 发放时间
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`                                                        // 创建时间
}

// TableName 指定表名
func (ReferralReward) TableName() string {
	return "referral_rewards"
}
