package service

import (
	"strings"
	"time"

	"github.com/red23-platform/internal/constants"
	"github.com/red23-platform/internal/logger"
	"github.com/red23-platform/internal/models"
	"github.com/red23-platform/internal/queue"
	"github.com/red23-platform/internal/repository"
)

// NotificationService 通知服务：每种通知类型只携带自己的载荷字段
type NotificationService struct {
	repo        repository.NotificationRepository
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		repo:        repo,
		queueClient: queueClient,
	}
}

// ReferralRegisteredPayload 推荐注册成功通知载荷
type ReferralRegisteredPayload struct {
	ReferredUserID string `json:"referred_user_id"`
	ReferralCode   string `json:"referral_code"`
}

// RewardMilestonePayload 里程碑奖励通知载荷
type RewardMilestonePayload struct {
	MilestoneIndex int          `json:"milestone_index"`
	Amount         models.Money `json:"amount"`
}

// NewsPublishedPayload 新闻发布通知载荷
type NewsPublishedPayload struct {
	PostID uint   `json:"post_id"`
	Slug   string `json:"slug"`
}

// PublishReferralRegistered 发布推荐注册成功通知
func (s *NotificationService) PublishReferralRegistered(userID string, payload ReferralRegisteredPayload) error {
	if strings.TrimSpace(payload.ReferredUserID) == "" || strings.TrimSpace(payload.ReferralCode) == "" {
		return ErrNotificationPayloadInvalid
	}
	return s.publish(userID, constants.NotificationKindReferralRegistered, models.JSON{
		"referred_user_id": payload.ReferredUserID,
		"referral_code":    payload.ReferralCode,
	})
}

// PublishRewardMilestone 发布里程碑奖励通知
func (s *NotificationService) PublishRewardMilestone(userID string, payload RewardMilestonePayload) error {
	if payload.MilestoneIndex <= 0 {
		return ErrNotificationPayloadInvalid
	}
	return s.publish(userID, constants.NotificationKindRewardMilestone, models.JSON{
		"milestone_index": payload.MilestoneIndex,
		"amount":          payload.Amount.String(),
	})
}

// PublishNewsPublished 发布新闻上线通知
func (s *NotificationService) PublishNewsPublished(userID string, payload NewsPublishedPayload) error {
	if payload.PostID == 0 || strings.TrimSpace(payload.Slug) == "" {
		return ErrNotificationPayloadInvalid
	}
	return s.publish(userID, constants.NotificationKindNewsPublished, models.JSON{
		"post_id": payload.PostID,
		"slug":    payload.Slug,
	})
}

func (s *NotificationService) publish(userID, kind string, payload models.JSON) error {
	if s == nil || s.repo == nil {
		return ErrNotFound
	}
	trimmedUserID := strings.TrimSpace(userID)
	if trimmedUserID == "" {
		return ErrInvalidUserID
	}

	notification := &models.Notification{
		UserID:      trimmedUserID,
		Kind:        kind,
		PayloadJSON: payload,
	}
	if err := s.repo.Create(notification); err != nil {
		return err
	}

	if s.queueClient != nil {
		err := s.queueClient.EnqueueNotificationDispatch(queue.NotificationDispatchPayload{
			NotificationID: notification.ID,
		})
		if err != nil {
			logger.Warnw("notification_dispatch_enqueue_failed",
				"notification_id", notification.ID,
				"error", err,
			)
		}
	}
	return nil
}

// List 查询用户通知列表
func (s *NotificationService) List(userID string, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrNotFound
	}
	if strings.TrimSpace(userID) == "" {
		return nil, 0, ErrInvalidUserID
	}
	return s.repo.List(repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     userID,
		UnreadOnly: unreadOnly,
	})
}

// MarkRead 将通知标记为已读；仅限本人
func (s *NotificationService) MarkRead(id uint, userID string) error {
	if s == nil || s.repo == nil {
		return ErrNotFound
	}
	affected, err := s.repo.MarkRead(id, userID, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		notification, lookupErr := s.repo.GetByID(id)
		if lookupErr != nil {
			return lookupErr
		}
		// 已读记录重复标记视为幂等成功
		if notification != nil && notification.UserID == strings.TrimSpace(userID) {
			return nil
		}
		return ErrNotFound
	}
	return nil
}

// Dispatch 执行通知分发；站内通知以落库为准，这里仅记录分发完成时间
func (s *NotificationService) Dispatch(id uint) error {
	if s == nil || s.repo == nil {
		return ErrNotFound
	}
	notification, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotFound
	}
	if notification.DispatchedAt != nil {
		return nil
	}
	if err := s.repo.MarkDispatched(notification.ID, time.Now()); err != nil {
		return err
	}
	logger.Infow("notification_dispatched",
		"notification_id", notification.ID,
		"user_id", notification.UserID,
		"kind", notification.Kind,
	)
	return nil
}
