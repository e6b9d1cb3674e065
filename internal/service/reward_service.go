package service

import (
	"strings"
	"time"

	"github.com/red23-platform/internal/constants"
	"github.com/red23-platform/internal/logger"
	"github.com/red23-platform/internal/models"
	"github.com/red23-platform/internal/repository"
)

// RewardService 里程碑奖励服务
// 每满一个里程碑（默认 12 个成功推荐）生成一条奖励记录，重复核算不会重复发奖。
type RewardService struct {
	rewards       repository.RewardRepository
	referrals     repository.ReferralRepository
	notifications *NotificationService

	milestone int
	amount    models.Money
}

// NewRewardService 创建里程碑奖励服务
func NewRewardService(
	rewards repository.RewardRepository,
	referrals repository.ReferralRepository,
	notifications *NotificationService,
	milestone int,
	amount models.Money,
) *RewardService {
	if milestone <= 0 {
		milestone = constants.RewardMilestoneDefault
	}
	return &RewardService{
		rewards:       rewards,
		referrals:     referrals,
		notifications: notifications,
		milestone:     milestone,
		amount:        amount,
	}
}

// EnsureMilestones 核算用户的里程碑奖励，返回本次新增的奖励条数
func (s *RewardService) EnsureMilestones(userID string) (int, error) {
	if s == nil || s.rewards == nil || s.referrals == nil {
		return 0, ErrNotFound
	}
	trimmedUserID := strings.TrimSpace(userID)
	if trimmedUserID == "" {
		return 0, ErrInvalidUserID
	}

	referral, err := s.referrals.GetByUserID(trimmedUserID)
	if err != nil {
		return 0, err
	}
	if referral == nil {
		return 0, ErrUserNotRegistered
	}

	total, err := s.referrals.CountByReferrerCode(referral.ReferralCode)
	if err != nil {
		return 0, err
	}
	completed := int(total / int64(s.milestone))
	if completed <= 0 {
		return 0, nil
	}

	recorded, err := s.rewards.MaxMilestoneIndex(trimmedUserID)
	if err != nil {
		return 0, err
	}

	created := 0
	for index := recorded + 1; index <= completed; index++ {
		reward := &models.ReferralReward{
			UserID:         trimmedUserID,
			MilestoneIndex: index,
			Amount:         s.amount,
			Status:         constants.RewardStatusPending,
		}
		if err := s.rewards.Create(reward); err != nil {
			// 并发核算下同一里程碑只允许一条记录
			if isUniqueViolation(err) {
				continue
			}
			return created, err
		}
		created++
		s.notifyMilestone(trimmedUserID, reward)
	}
	return created, nil
}

func (s *RewardService) notifyMilestone(userID string, reward *models.ReferralReward) {
	if s.notifications == nil {
		return
	}
	err := s.notifications.PublishRewardMilestone(userID, RewardMilestonePayload{
		MilestoneIndex: reward.MilestoneIndex,
		Amount:         reward.Amount,
	})
	if err != nil {
		logger.Warnw("reward_milestone_notify_failed",
			"user_id", userID,
			"milestone_index", reward.MilestoneIndex,
			"error", err,
		)
	}
}

// ListByUser 查询用户的奖励记录
func (s *RewardService) ListByUser(userID string, page, pageSize int) ([]models.ReferralReward, int64, error) {
	if s == nil || s.rewards == nil {
		return nil, 0, ErrNotFound
	}
	if strings.TrimSpace(userID) == "" {
		return nil, 0, ErrInvalidUserID
	}
	return s.rewards.ListByUser(userID, page, pageSize)
}

// List 后台查询奖励记录列表
func (s *RewardService) List(filter repository.RewardListFilter) ([]models.ReferralReward, int64, error) {
	if s == nil || s.rewards == nil {
		return nil, 0, ErrNotFound
	}
	return s.rewards.List(filter)
}

// Grant 发放奖励；重复发放返回 ErrRewardAlreadyGranted
func (s *RewardService) Grant(id uint) (*models.ReferralReward, error) {
	if s == nil || s.rewards == nil {
		return nil, ErrNotFound
	}
	reward, err := s.rewards.GetByID(id)
	if err != nil {
		return nil, err
	}
	if reward == nil {
		return nil, ErrNotFound
	}

	affected, err := s.rewards.MarkGranted(reward.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrRewardAlreadyGranted
	}
	return s.rewards.GetByID(reward.ID)
}
