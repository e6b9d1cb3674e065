package service

import (
	"errors"
	"testing"

	"github.com/red23-platform/internal/constants"
	"github.com/red23-platform/internal/models"
	"github.com/red23-platform/internal/repository"
)

func newNotificationServiceForTest(t *testing.T) (*NotificationService, repository.NotificationRepository) {
	t.Helper()
	db := setupServiceTestDB(t)
	repo := repository.NewNotificationRepository(db)
	return NewNotificationService(repo, nil), repo
}

func TestPublishNotificationPayloadValidation(t *testing.T) {
	svc, _ := newNotificationServiceForTest(t)

	err := svc.PublishReferralRegistered("promoter", ReferralRegisteredPayload{ReferralCode: "ABC234XY"})
	if !errors.Is(err, ErrNotificationPayloadInvalid) {
		t.Fatalf("missing referred user want ErrNotificationPayloadInvalid got %v", err)
	}
	err = svc.PublishRewardMilestone("promoter", RewardMilestonePayload{MilestoneIndex: 0})
	if !errors.Is(err, ErrNotificationPayloadInvalid) {
		t.Fatalf("zero milestone want ErrNotificationPayloadInvalid got %v", err)
	}
	err = svc.PublishNewsPublished("promoter", NewsPublishedPayload{PostID: 1})
	if !errors.Is(err, ErrNotificationPayloadInvalid) {
		t.Fatalf("missing slug want ErrNotificationPayloadInvalid got %v", err)
	}
	err = svc.PublishNewsPublished("  ", NewsPublishedPayload{PostID: 1, Slug: "launch"})
	if !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("blank user want ErrInvalidUserID got %v", err)
	}
}

func TestNotificationListUnreadFilter(t *testing.T) {
	svc, _ := newNotificationServiceForTest(t)

	amount, err := models.NewMoneyFromString("50.00")
	if err != nil {
		t.Fatalf("parse amount failed: %v", err)
	}
	if err := svc.PublishRewardMilestone("promoter", RewardMilestonePayload{MilestoneIndex: 1, Amount: amount}); err != nil {
		t.Fatalf("publish milestone failed: %v", err)
	}
	if err := svc.PublishNewsPublished("promoter", NewsPublishedPayload{PostID: 7, Slug: "launch"}); err != nil {
		t.Fatalf("publish news failed: %v", err)
	}
	if err := svc.PublishNewsPublished("other", NewsPublishedPayload{PostID: 7, Slug: "launch"}); err != nil {
		t.Fatalf("publish for other user failed: %v", err)
	}

	notifications, total, err := svc.List("promoter", false, 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(notifications) != 2 {
		t.Fatalf("list want 2 got total=%d len=%d", total, len(notifications))
	}

	if err := svc.MarkRead(notifications[0].ID, "promoter"); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}

	unread, total, err := svc.List("promoter", true, 1, 20)
	if err != nil {
		t.Fatalf("list unread failed: %v", err)
	}
	if total != 1 || len(unread) != 1 {
		t.Fatalf("unread want 1 got total=%d len=%d", total, len(unread))
	}
	if unread[0].ID == notifications[0].ID {
		t.Fatalf("read notification should be filtered out")
	}
}

func TestNotificationMarkRead(t *testing.T) {
	svc, repo := newNotificationServiceForTest(t)

	if err := svc.PublishNewsPublished("promoter", NewsPublishedPayload{PostID: 1, Slug: "launch"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	notifications, _, err := svc.List("promoter", false, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	id := notifications[0].ID

	if err := svc.MarkRead(id, "promoter"); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	// 重复标记视为幂等成功
	if err := svc.MarkRead(id, "promoter"); err != nil {
		t.Fatalf("repeated mark read should be idempotent, got %v", err)
	}
	if err := svc.MarkRead(id, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign mark read want ErrNotFound got %v", err)
	}
	if err := svc.MarkRead(99999, "promoter"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown mark read want ErrNotFound got %v", err)
	}

	stored, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("load notification failed: %v", err)
	}
	if stored.ReadAt == nil {
		t.Fatalf("read_at should be set")
	}
}

func TestNotificationDispatch(t *testing.T) {
	svc, repo := newNotificationServiceForTest(t)

	if err := svc.PublishNewsPublished("promoter", NewsPublishedPayload{PostID: 1, Slug: "launch"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	notifications, _, err := svc.List("promoter", false, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	id := notifications[0].ID
	if notifications[0].Kind != constants.NotificationKindNewsPublished {
		t.Fatalf("kind want %s got %s", constants.NotificationKindNewsPublished, notifications[0].Kind)
	}

	if err := svc.Dispatch(id); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	stored, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("load notification failed: %v", err)
	}
	if stored.DispatchedAt == nil {
		t.Fatalf("dispatched_at should be set")
	}
	// 已分发的通知再次分发为空操作
	if err := svc.Dispatch(id); err != nil {
		t.Fatalf("repeated dispatch should be no-op, got %v", err)
	}
	if err := svc.Dispatch(99999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown dispatch want ErrNotFound got %v", err)
	}
}
