package service

import (
	"errors"
	"testing"

	"github.com/red23-platform/internal/constants"
	"github.com/red23-platform/internal/models"
	"github.com/red23-platform/internal/repository"
)

func newRewardServiceForTest(t *testing.T) (*RewardService, *ReferralService, repository.ReferralRepository, repository.RewardRepository) {
	t.Helper()
	db := setupServiceTestDB(t)
	referralRepo := repository.NewReferralRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil)
	referralSvc := NewReferralService(referralRepo, notifications, nil, ReferralServiceOptions{Milestone: 12})

	amount, err := models.NewMoneyFromString("50.00")
	if err != nil {
		t.Fatalf("parse amount failed: %v", err)
	}
	rewardSvc := NewRewardService(rewardRepo, referralRepo, notifications, 12, amount)
	return rewardSvc, referralSvc, referralRepo, rewardRepo
}

func TestEnsureMilestones(t *testing.T) {
	rewardSvc, referralSvc, referralRepo, _ := newRewardServiceForTest(t)

	referral, err := referralSvc.Register("promoter", "")
	if err != nil {
		t.Fatalf("register promoter failed: %v", err)
	}

	created, err := rewardSvc.EnsureMilestones("promoter")
	if err != nil {
		t.Fatalf("ensure with no referrals failed: %v", err)
	}
	if created != 0 {
		t.Fatalf("created want 0 got %d", created)
	}

	seedReferredUsers(t, referralRepo, referral.ReferralCode, 0, 25)

	created, err = rewardSvc.EnsureMilestones("promoter")
	if err != nil {
		t.Fatalf("ensure milestones failed: %v", err)
	}
	if created != 2 {
		t.Fatalf("created want 2 got %d", created)
	}

	rewards, total, err := rewardSvc.ListByUser("promoter", 1, 20)
	if err != nil {
		t.Fatalf("list rewards failed: %v", err)
	}
	if total != 2 || len(rewards) != 2 {
		t.Fatalf("rewards want 2 got total=%d len=%d", total, len(rewards))
	}
	seen := map[int]bool{}
	for _, reward := range rewards {
		seen[reward.MilestoneIndex] = true
		if reward.Status != constants.RewardStatusPending {
			t.Fatalf("reward status want pending got %s", reward.Status)
		}
		if reward.Amount.String() != "50.00" {
			t.Fatalf("reward amount want 50.00 got %s", reward.Amount.String())
		}
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("milestone indexes want 1 and 2 got %v", seen)
	}

	// 重复核算不会新增记录
	created, err = rewardSvc.EnsureMilestones("promoter")
	if err != nil {
		t.Fatalf("re-run ensure failed: %v", err)
	}
	if created != 0 {
		t.Fatalf("re-run created want 0 got %d", created)
	}

	if _, err := rewardSvc.EnsureMilestones("nobody"); !errors.Is(err, ErrUserNotRegistered) {
		t.Fatalf("unregistered ensure want ErrUserNotRegistered got %v", err)
	}
	if _, err := rewardSvc.EnsureMilestones("  "); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("blank user ensure want ErrInvalidUserID got %v", err)
	}
}

func TestGrantReward(t *testing.T) {
	rewardSvc, referralSvc, referralRepo, rewardRepo := newRewardServiceForTest(t)

	referral, err := referralSvc.Register("promoter", "")
	if err != nil {
		t.Fatalf("register promoter failed: %v", err)
	}
	seedReferredUsers(t, referralRepo, referral.ReferralCode, 0, 12)
	if _, err := rewardSvc.EnsureMilestones("promoter"); err != nil {
		t.Fatalf("ensure milestones failed: %v", err)
	}

	rewards, _, err := rewardRepo.ListByUser("promoter", 1, 10)
	if err != nil {
		t.Fatalf("list rewards failed: %v", err)
	}
	if len(rewards) != 1 {
		t.Fatalf("rewards want 1 got %d", len(rewards))
	}

	granted, err := rewardSvc.Grant(rewards[0].ID)
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if granted.Status != constants.RewardStatusGranted {
		t.Fatalf("status want granted got %s", granted.Status)
	}
	if granted.GrantedAt == nil {
		t.Fatalf("granted_at should be set")
	}

	if _, err := rewardSvc.Grant(rewards[0].ID); !errors.Is(err, ErrRewardAlreadyGranted) {
		t.Fatalf("second grant want ErrRewardAlreadyGranted got %v", err)
	}
	if _, err := rewardSvc.Grant(99999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown reward want ErrNotFound got %v", err)
	}
}
