package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/red23-platform/internal/constants"
	"github.com/red23-platform/internal/models"
	"github.com/red23-platform/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.UserReferral{}, &models.ReferralReward{}, &models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newReferralServiceForTest(t *testing.T, db *gorm.DB) (*ReferralService, repository.ReferralRepository) {
	t.Helper()
	repo := repository.NewReferralRepository(db)
	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewReferralService(repo, notifications, nil, ReferralServiceOptions{
		Milestone:    12,
		TermsVersion: "2026-02",
	})
	return svc, repo
}

func seedReferredUsers(t *testing.T, repo repository.ReferralRepository, referrerCode string, start, count int) {
	t.Helper()
	for i := start; i < start+count; i++ {
		code := referrerCode
		referral := &models.UserReferral{
			UserID:         fmt.Sprintf("referred-%s-%03d", referrerCode, i),
			ReferralCode:   fmt.Sprintf("SEED%s%03d", referrerCode[:2], i),
			ReferredByCode: &code,
		}
		if err := repo.Create(referral); err != nil {
			t.Fatalf("seed referred user failed: %v", err)
		}
	}
}

func TestReferralRegister(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := newReferralServiceForTest(t, db)

	referral, err := svc.Register("user-a", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if referral.UserID != "user-a" {
		t.Fatalf("user_id want user-a got %s", referral.UserID)
	}
	if len(referral.ReferralCode) != constants.ReferralCodeLength {
		t.Fatalf("code length want %d got %d", constants.ReferralCodeLength, len(referral.ReferralCode))
	}
	if check := ValidateReferralCodeFormat(referral.ReferralCode); !check.IsValid {
		t.Fatalf("generated code %q should be valid, reason=%s", referral.ReferralCode, check.Reason)
	}
	if referral.ReferredByCode != nil {
		t.Fatalf("referred_by_code should be empty for direct registration")
	}

	if _, err := svc.Register("user-a", ""); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("duplicate register want ErrAlreadyRegistered got %v", err)
	}
	if _, err := svc.Register("   ", ""); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("blank user want ErrInvalidUserID got %v", err)
	}
}

func TestReferralRegisterWithReferrer(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := newReferralServiceForTest(t, db)

	referrer, err := svc.Register("promoter", "")
	if err != nil {
		t.Fatalf("register promoter failed: %v", err)
	}

	referred, err := svc.Register("friend", referrer.ReferralCode)
	if err != nil {
		t.Fatalf("register with referrer failed: %v", err)
	}
	if referred.ReferredByCode == nil || *referred.ReferredByCode != referrer.ReferralCode {
		t.Fatalf("referred_by_code want %s got %v", referrer.ReferralCode, referred.ReferredByCode)
	}

	// 推荐人应收到推荐注册成功通知
	var notifications []models.Notification
	if err := db.Where("user_id = ?", "promoter").Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notification count want 1 got %d", len(notifications))
	}
	if notifications[0].Kind != constants.NotificationKindReferralRegistered {
		t.Fatalf("notification kind want %s got %s", constants.NotificationKindReferralRegistered, notifications[0].Kind)
	}

	if _, err := svc.Register("stranger", "ZZZZ9999"); !errors.Is(err, ErrInvalidReferrerCode) {
		t.Fatalf("unknown referrer want ErrInvalidReferrerCode got %v", err)
	}
}

// selfOwnedCodeRepo 模拟推荐码查得到本人档案而用户查档落空的竞态
type selfOwnedCodeRepo struct {
	repository.ReferralRepository
	owner string
}

func (r *selfOwnedCodeRepo) GetByUserID(userID string) (*models.UserReferral, error) {
	return nil, nil
}

func (r *selfOwnedCodeRepo) GetByCode(code string) (*models.UserReferral, error) {
	return &models.UserReferral{UserID: r.owner, ReferralCode: code}, nil
}

func TestReferralRegisterSelfReferral(t *testing.T) {
	repo := &selfOwnedCodeRepo{owner: "promoter"}
	svc := NewReferralService(repo, nil, nil, ReferralServiceOptions{})

	if _, err := svc.Register("promoter", "PROMO234"); !errors.Is(err, ErrSelfReferralNotAllowed) {
		t.Fatalf("own code want ErrSelfReferralNotAllowed got %v", err)
	}
}

func TestReferralStatsMilestoneBoundaries(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, repo := newReferralServiceForTest(t, db)

	referral, err := svc.Register("promoter", "")
	if err != nil {
		t.Fatalf("register promoter failed: %v", err)
	}

	cases := []struct {
		total         int64
		wantCompleted int64
		wantUntilNext int64
	}{
		{total: 0, wantCompleted: 0, wantUntilNext: 12},
		{total: 11, wantCompleted: 0, wantUntilNext: 1},
		{total: 12, wantCompleted: 1, wantUntilNext: 12},
		{total: 23, wantCompleted: 1, wantUntilNext: 1},
		{total: 24, wantCompleted: 2, wantUntilNext: 12},
	}

	var seeded int64
	for _, tc := range cases {
		if tc.total > seeded {
			seedReferredUsers(t, repo, referral.ReferralCode, int(seeded), int(tc.total-seeded))
			seeded = tc.total
		}

		stats, err := svc.GetStats("promoter")
		if err != nil {
			t.Fatalf("get stats at total=%d failed: %v", tc.total, err)
		}
		if stats.TotalReferrals != tc.total {
			t.Fatalf("total want %d got %d", tc.total, stats.TotalReferrals)
		}
		if stats.CompletedMilestones != tc.wantCompleted {
			t.Fatalf("completed at total=%d want %d got %d", tc.total, tc.wantCompleted, stats.CompletedMilestones)
		}
		if stats.ReferralsUntilNextReward != tc.wantUntilNext {
			t.Fatalf("until_next at total=%d want %d got %d", tc.total, tc.wantUntilNext, stats.ReferralsUntilNextReward)
		}
		if stats.Milestone != 12 {
			t.Fatalf("milestone want 12 got %d", stats.Milestone)
		}
	}

	if _, err := svc.GetStats("nobody"); !errors.Is(err, ErrUserNotRegistered) {
		t.Fatalf("unregistered stats want ErrUserNotRegistered got %v", err)
	}
}

func TestReferralValidateExists(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := newReferralServiceForTest(t, db)

	referral, err := svc.Register("promoter", "")
	if err != nil {
		t.Fatalf("register promoter failed: %v", err)
	}

	exists, err := svc.ValidateExists(referral.ReferralCode)
	if err != nil {
		t.Fatalf("validate exists failed: %v", err)
	}
	if !exists {
		t.Fatalf("registered code should exist")
	}

	exists, err = svc.ValidateExists("ZZZZ9999")
	if err != nil {
		t.Fatalf("validate unknown failed: %v", err)
	}
	if exists {
		t.Fatalf("unknown code should not exist")
	}

	exists, err = svc.ValidateExists("bad code!")
	if err != nil {
		t.Fatalf("validate malformed failed: %v", err)
	}
	if exists {
		t.Fatalf("malformed code should not exist")
	}
}

func TestReferralCheckAvailability(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, _ := newReferralServiceForTest(t, db)

	referral, err := svc.Register("promoter", "")
	if err != nil {
		t.Fatalf("register promoter failed: %v", err)
	}

	// 本人已占用的码视为可用
	result, err := svc.CheckAvailability(referral.ReferralCode, "promoter")
	if err != nil {
		t.Fatalf("check own code failed: %v", err)
	}
	if !result.Available {
		t.Fatalf("own code should be available, reason=%s", result.Reason)
	}

	result, err = svc.CheckAvailability(referral.ReferralCode, "someone-else")
	if err != nil {
		t.Fatalf("check taken code failed: %v", err)
	}
	if result.Available {
		t.Fatalf("taken code should be unavailable")
	}
	if result.Reason != "code_unavailable" {
		t.Fatalf("reason want code_unavailable got %s", result.Reason)
	}
	if len(result.Suggestions) == 0 {
		t.Fatalf("taken code should carry suggestions")
	}

	result, err = svc.CheckAvailability("AB2", "promoter")
	if err != nil {
		t.Fatalf("check malformed code failed: %v", err)
	}
	if result.Available || result.Reason != "too_short" {
		t.Fatalf("malformed code want too_short got available=%v reason=%s", result.Available, result.Reason)
	}
}

func TestReferralAcceptTerms(t *testing.T) {
	db := setupServiceTestDB(t)
	svc, repo := newReferralServiceForTest(t, db)

	if _, err := svc.Register("promoter", ""); err != nil {
		t.Fatalf("register promoter failed: %v", err)
	}

	referral, err := svc.AcceptTerms("promoter", "2025-12")
	if err != nil {
		t.Fatalf("accept terms failed: %v", err)
	}
	if referral.TermsVersion != "2025-12" {
		t.Fatalf("terms version want 2025-12 got %s", referral.TermsVersion)
	}
	if referral.TermsAcceptedAt == nil {
		t.Fatalf("terms accepted time should be set")
	}

	// 未指定版本时落到当前版本
	referral, err = svc.AcceptTerms("promoter", "  ")
	if err != nil {
		t.Fatalf("accept default terms failed: %v", err)
	}
	if referral.TermsVersion != "2026-02" {
		t.Fatalf("default terms version want 2026-02 got %s", referral.TermsVersion)
	}

	stored, err := repo.GetByUserID("promoter")
	if err != nil {
		t.Fatalf("load referral failed: %v", err)
	}
	if stored.TermsVersion != "2026-02" {
		t.Fatalf("stored terms version want 2026-02 got %s", stored.TermsVersion)
	}

	if _, err := svc.AcceptTerms("nobody", "2026-02"); !errors.Is(err, ErrUserNotRegistered) {
		t.Fatalf("unregistered accept want ErrUserNotRegistered got %v", err)
	}
}
