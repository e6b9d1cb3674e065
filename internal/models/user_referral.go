package models

import "time"

// UserReferral 用户推广档案表（每个用户一行，推广码生成后不可变）
type UserReferral struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                       // 主键
	UserID          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"user_id"`       // 外部认证服务的稳定用户标识
	ReferralCode    string     `gorm:"type:varchar(12);uniqueIndex;not null" json:"referral_code"` // 专属推广码
	ReferredByCode  *string    `gorm:"type:varchar(12);index" json:"referred_by_code"`             // 注册时使用的推荐码（历史引用，不随推荐人变更）
	TermsVersion    string     `gorm:"type:varchar(32)" json:"terms_version"`                      // 已接受的条款版本
	TermsAcceptedAt *time.Time `json:"terms_accepted_at"`                                          // 条款接受时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                                 // 更新时间
}

// TableName 指定表名
func (UserReferral) TableName() string {
	return "user_referrals"
}
