package models

import "time"

// Notification 用户通知记录表
type Notification struct {
	ID           uint       `gorm:"primarykey" json:"id"`                          // 主键
	UserID       string     `gorm:"type:varchar(64);not null;index" json:"user_id"` // 接收人用户标识
	Kind         string     `gorm:"type:varchar(32);not null;index" json:"kind"`   // 通知类型
	PayloadJSON  JSON       `gorm:"type:json;not null" json:"payload"`             // 类型对应的载荷
	ReadAt       *time.Time `json:"read_at"`                                       // 已读时间
	DispatchedAt *time.Time `json:"-"`                                             // 异步分发完成时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                       // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
