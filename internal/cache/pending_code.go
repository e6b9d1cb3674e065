package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PendingReferralCodeStore 访客落地推荐码暂存
// 访客点击推广链接时先记录推荐码，注册完成后由自动建档流程消费。
// 读取即删除，保证同一份暂存只会被使用一次。
type PendingReferralCodeStore struct {
	ttl time.Duration
}

// NewPendingReferralCodeStore 创建暂存实例
func NewPendingReferralCodeStore(ttl time.Duration) *PendingReferralCodeStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PendingReferralCodeStore{ttl: ttl}
}

// Save 写入访客的待用推荐码
func (s *PendingReferralCodeStore) Save(ctx context.Context, visitorKey, code string) error {
	key := pendingReferralCodeKey(visitorKey)
	if key == "" || strings.TrimSpace(code) == "" {
		return nil
	}
	return SetString(ctx, key, strings.TrimSpace(code), s.ttl)
}

// Consume 读取并清除访客的待用推荐码
func (s *PendingReferralCodeStore) Consume(ctx context.Context, visitorKey string) (string, bool, error) {
	key := pendingReferralCodeKey(visitorKey)
	if key == "" {
		return "", false, nil
	}
	return GetDelString(ctx, key)
}

func pendingReferralCodeKey(visitorKey string) string {
	trimmed := strings.TrimSpace(visitorKey)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("referral:pending:%s", trimmed)
}
