package repository

import "time"

// PostListFilter 查询文章列表的过滤条件
type PostListFilter struct {
	Page          int
	PageSize      int
	Type          string
	Search        string
	OnlyPublished bool
	OrderBy       string
}

// ReferralListFilter 查询推广档案列表的过滤条件
type ReferralListFilter struct {
	Page           int
	PageSize       int
	UserID         string
	Code           string
	ReferredByCode string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

// RewardListFilter 查询里程碑奖励列表的过滤条件
type RewardListFilter struct {
	Page     int
	PageSize int
	UserID   string
	Status   string
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     string
	Kind       string
	UnreadOnly bool
}
