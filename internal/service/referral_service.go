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

// ReferralService 推广计划核心服务：建档、推荐关系、统计
type ReferralService struct {
	repo          repository.ReferralRepository
	notifications *NotificationService
	queueClient   *queue.Client

	milestone    int
	codeLength   int
	maxAttempts  int
	termsVersion string
}

// ReferralServiceOptions 推广服务配置项
type ReferralServiceOptions struct {
	Milestone           int
	CodeLength          int
	MaxGenerateAttempts int
	TermsVersion        string
}

// NewReferralService 创建推广服务
func NewReferralService(
	repo repository.ReferralRepository,
	notifications *NotificationService,
	queueClient *queue.Client,
	options ReferralServiceOptions,
) *ReferralService {
	milestone := options.Milestone
	if milestone <= 0 {
		milestone = constants.RewardMilestoneDefault
	}
	codeLength := options.CodeLength
	if codeLength < constants.ReferralCodeMinLength || codeLength > constants.ReferralCodeMaxLength {
		codeLength = constants.ReferralCodeLength
	}
	maxAttempts := options.MaxGenerateAttempts
	if maxAttempts <= 0 {
		maxAttempts = constants.ReferralCodeMaxAttempts
	}
	return &ReferralService{
		repo:          repo,
		notifications: notifications,
		queueClient:   queueClient,
		milestone:     milestone,
		codeLength:    codeLength,
		maxAttempts:   maxAttempts,
		termsVersion:  strings.TrimSpace(options.TermsVersion),
	}
}

// Milestone 返回当前里程碑步长
func (s *ReferralService) Milestone() int {
	if s == nil || s.milestone <= 0 {
		return constants.RewardMilestoneDefault
	}
	return s.milestone
}

// ReferralStats 推广统计
type ReferralStats struct {
	ReferralCode             string `json:"referral_code"`
	TotalReferrals           int64  `json:"total_referrals"`
	CompletedMilestones      int64  `json:"completed_milestones"`
	Milestone                int    `json:"milestone"`
	ReferralsUntilNextReward int64  `json:"referrals_until_next_reward"`
}

// AvailabilityResult 推广码可用性结果
type AvailabilityResult struct {
	Available   bool     `json:"available"`
	Reason      string   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Register 为用户建立推广档案；每个用户仅能注册一次
func (s *ReferralService) Register(userID, referredByCode string) (*models.UserReferral, error) {
	if s == nil || s.repo == nil {
		return nil, ErrNotFound
	}
	trimmedUserID := strings.TrimSpace(userID)
	if trimmedUserID == "" {
		return nil, ErrInvalidUserID
	}

	existing, err := s.repo.GetByUserID(trimmedUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	var referrer *models.UserReferral
	normalizedReferrer := NormalizeReferralCode(referredByCode)
	if normalizedReferrer != "" {
		referrer, err = s.repo.GetByCode(normalizedReferrer)
		if err != nil {
			return nil, err
		}
		if referrer == nil {
			return nil, ErrInvalidReferrerCode
		}
		if referrer.UserID == trimmedUserID {
			return nil, ErrSelfReferralNotAllowed
		}
	}

	referral, err := s.createWithGeneratedCode(trimmedUserID, normalizedReferrer, referrer)
	if err != nil {
		return nil, err
	}

	if referrer != nil {
		s.afterReferredRegistration(referrer, referral)
	}
	return referral, nil
}

// createWithGeneratedCode 生成推广码并写库；推广码撞唯一索引时重试
func (s *ReferralService) createWithGeneratedCode(userID, referredByCode string, referrer *models.UserReferral) (*models.UserReferral, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := generateReferralCode(s.codeLength)
		if err != nil {
			return nil, err
		}

		referral := &models.UserReferral{
			UserID:       userID,
			ReferralCode: code,
		}
		if referredByCode != "" && referrer != nil {
			referral.ReferredByCode = &referredByCode
		}

		err = s.repo.Create(referral)
		if err == nil {
			return referral, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}

		// 唯一索引冲突：命中 user_id 说明并发重复注册，命中 referral_code 则换码重试
		existing, lookupErr := s.repo.GetByUserID(userID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil {
			return nil, ErrAlreadyRegistered
		}
	}
	return nil, ErrCodeGenerationExhausted
}

// afterReferredRegistration 推荐成功后的旁路动作，失败仅记录日志
func (s *ReferralService) afterReferredRegistration(referrer, referral *models.UserReferral) {
	if s.notifications != nil {
		err := s.notifications.PublishReferralRegistered(referrer.UserID, ReferralRegisteredPayload{
			ReferredUserID: referral.UserID,
			ReferralCode:   referrer.ReferralCode,
		})
		if err != nil {
			logger.Warnw("referral_registered_notify_failed",
				"referrer_user_id", referrer.UserID,
				"error", err,
			)
		}
	}
	if s.queueClient != nil {
		err := s.queueClient.EnqueueMilestoneCheck(queue.MilestoneCheckPayload{UserID: referrer.UserID})
		if err != nil {
			logger.Warnw("milestone_check_enqueue_failed",
				"referrer_user_id", referrer.UserID,
				"error", err,
			)
		}
	}
}

// GetByUserID 获取用户推广档案
func (s *ReferralService) GetByUserID(userID string) (*models.UserReferral, error) {
	if s == nil || s.repo == nil {
		return nil, ErrNotFound
	}
	referral, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, ErrUserNotRegistered
	}
	return referral, nil
}

// GetMyReferrals 获取用户推荐的注册列表（按注册时间倒序）
func (s *ReferralService) GetMyReferrals(userID string, page, pageSize int) ([]models.UserReferral, int64, error) {
	referral, err := s.GetByUserID(userID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByReferrerCode(referral.ReferralCode, page, pageSize)
}

// GetStats 获取用户推广统计
func (s *ReferralService) GetStats(userID string) (*ReferralStats, error) {
	referral, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.buildStats(referral)
}

// GetStatsByID 按档案ID获取推广统计（后台）
func (s *ReferralService) GetStatsByID(id uint) (*ReferralStats, error) {
	if s == nil || s.repo == nil {
		return nil, ErrNotFound
	}
	referral, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, ErrNotFound
	}
	return s.buildStats(referral)
}

func (s *ReferralService) buildStats(referral *models.UserReferral) (*ReferralStats, error) {
	total, err := s.repo.CountByReferrerCode(referral.ReferralCode)
	if err != nil {
		return nil, err
	}

	milestone := int64(s.Milestone())
	return &ReferralStats{
		ReferralCode:             referral.ReferralCode,
		TotalReferrals:           total,
		CompletedMilestones:      total / milestone,
		Milestone:                int(milestone),
		ReferralsUntilNextReward: milestone - (total % milestone),
	}, nil
}

// ValidateExists 校验推广码是否已注册
func (s *ReferralService) ValidateExists(code string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, nil
	}
	result := ValidateReferralCodeFormat(code)
	if !result.IsValid {
		return false, nil
	}
	referral, err := s.repo.GetByCode(code)
	if err != nil {
		return false, err
	}
	return referral != nil, nil
}

// CheckAvailability 校验推广码对请求用户是否可用
// 已被本人占用视为可用，被他人占用视为不可用。
func (s *ReferralService) CheckAvailability(code, requestingUserID string) (*AvailabilityResult, error) {
	if s == nil || s.repo == nil {
		return nil, ErrNotFound
	}
	result := ValidateReferralCodeFormat(code)
	if !result.IsValid {
		return &AvailabilityResult{
			Available:   false,
			Reason:      result.Reason,
			Suggestions: result.Suggestions,
		}, nil
	}

	referral, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if referral != nil && referral.UserID != strings.TrimSpace(requestingUserID) {
		return &AvailabilityResult{
			Available:   false,
			Reason:      "code_unavailable",
			Suggestions: suggestReferralCodes(NormalizeReferralCode(code)),
		}, nil
	}
	return &AvailabilityResult{Available: true}, nil
}

// AcceptTerms 记录条款接受
func (s *ReferralService) AcceptTerms(userID, version string) (*models.UserReferral, error) {
	referral, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = s.termsVersion
	}
	now := time.Now()
	if err := s.repo.UpdateTerms(referral.UserID, trimmedVersion, now); err != nil {
		return nil, err
	}
	referral.TermsVersion = trimmedVersion
	referral.TermsAcceptedAt = &now
	return referral, nil
}

// ListRegistrations 后台查询推广档案列表
func (s *ReferralService) ListRegistrations(filter repository.ReferralListFilter) ([]models.UserReferral, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrNotFound
	}
	return s.repo.List(filter)
}

// isUniqueViolation 判断是否为唯一索引冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique") || strings.Contains(message, "duplicate")
}
