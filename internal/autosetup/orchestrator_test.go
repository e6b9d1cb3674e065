package autosetup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/red23-platform/internal/models"
	"github.com/red23-platform/internal/service"
)

type fakeRegistrar struct {
	mu        sync.Mutex
	byUser    map[string]*models.UserReferral
	byCode    map[string]*models.UserReferral
	nextCode  int
	checkGate chan struct{}
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{
		byUser: make(map[string]*models.UserReferral),
		byCode: make(map[string]*models.UserReferral),
	}
}

func (f *fakeRegistrar) GetByUserID(userID string) (*models.UserReferral, error) {
	if f.checkGate != nil {
		<-f.checkGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	referral, ok := f.byUser[userID]
	if !ok {
		return nil, service.ErrUserNotRegistered
	}
	return referral, nil
}

func (f *fakeRegistrar) Register(userID, referredByCode string) (*models.UserReferral, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byUser[userID]; exists {
		return nil, service.ErrAlreadyRegistered
	}

	var referrer *models.UserReferral
	if referredByCode != "" {
		owner, ok := f.byCode[referredByCode]
		if !ok {
			return nil, service.ErrInvalidReferrerCode
		}
		if owner.UserID == userID {
			return nil, service.ErrSelfReferralNotAllowed
		}
		referrer = owner
	}

	f.nextCode++
	referral := &models.UserReferral{
		ID:           uint(f.nextCode),
		UserID:       userID,
		ReferralCode: "CODE234" + string(rune('A'+f.nextCode%24)),
	}
	if referrer != nil {
		code := referredByCode
		referral.ReferredByCode = &code
	}
	f.byUser[userID] = referral
	f.byCode[referral.ReferralCode] = referral
	return referral, nil
}

func (f *fakeRegistrar) seed(userID, code string) *models.UserReferral {
	f.mu.Lock()
	defer f.mu.Unlock()
	referral := &models.UserReferral{UserID: userID, ReferralCode: code}
	f.byUser[userID] = referral
	f.byCode[code] = referral
	return referral
}

type fakePendingStore struct {
	codes map[string]string
}

func (s *fakePendingStore) Consume(ctx context.Context, visitorKey string) (string, bool, error) {
	code, ok := s.codes[visitorKey]
	if !ok {
		return "", false, nil
	}
	delete(s.codes, visitorKey)
	return code, true, nil
}

func TestOrchestratorRegistersWithPendingCode(t *testing.T) {
	registrar := newFakeRegistrar()
	promoter := registrar.seed("promoter", "PROMO234")
	store := &fakePendingStore{codes: map[string]string{"visitor-1": promoter.ReferralCode}}
	orchestrator := NewOrchestrator(registrar, store)

	result, err := orchestrator.Run(context.Background(), "newcomer", "visitor-1")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.AlreadyRegistered {
		t.Fatalf("fresh user should not be already registered")
	}
	if result.UsedPendingCode != promoter.ReferralCode {
		t.Fatalf("used pending code want %s got %s", promoter.ReferralCode, result.UsedPendingCode)
	}
	if result.Referral.ReferredByCode == nil || *result.Referral.ReferredByCode != promoter.ReferralCode {
		t.Fatalf("referral should carry referrer code")
	}
	if _, remaining, _ := store.Consume(context.Background(), "visitor-1"); remaining {
		t.Fatalf("pending code should be consumed")
	}
}

func TestOrchestratorAlreadyRegistered(t *testing.T) {
	registrar := newFakeRegistrar()
	existing := registrar.seed("promoter", "PROMO234")
	orchestrator := NewOrchestrator(registrar, &fakePendingStore{})

	result, err := orchestrator.Run(context.Background(), "promoter", "")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.AlreadyRegistered {
		t.Fatalf("expected already_registered=true")
	}
	if result.Referral.ReferralCode != existing.ReferralCode {
		t.Fatalf("referral code want %s got %s", existing.ReferralCode, result.Referral.ReferralCode)
	}
}

func TestOrchestratorInvalidPendingCodeFails(t *testing.T) {
	registrar := newFakeRegistrar()
	store := &fakePendingStore{codes: map[string]string{"visitor-1": "GONE2345"}}
	orchestrator := NewOrchestrator(registrar, store)

	// 暂存推荐码已失效：失败必须透出，不允许悄悄改成无推荐人注册
	result, err := orchestrator.Run(context.Background(), "newcomer", "visitor-1")
	if !errors.Is(err, service.ErrInvalidReferrerCode) {
		t.Fatalf("invalid pending code want ErrInvalidReferrerCode got %v", err)
	}
	if result != nil {
		t.Fatalf("failed run should not return a result, got %+v", result)
	}
	if _, err := registrar.GetByUserID("newcomer"); !errors.Is(err, service.ErrUserNotRegistered) {
		t.Fatalf("failed run should not register the user, got %v", err)
	}

	// 失效码在读取时已被清除，再次发起时干净重试
	if _, remaining, _ := store.Consume(context.Background(), "visitor-1"); remaining {
		t.Fatalf("invalid pending code should still be consumed")
	}
	result, err = orchestrator.Run(context.Background(), "newcomer", "visitor-1")
	if err != nil {
		t.Fatalf("retry after consumed code failed: %v", err)
	}
	if result.UsedPendingCode != "" || result.Referral.ReferredByCode != nil {
		t.Fatalf("retry should register without referrer, got %+v", result)
	}
}

func TestOrchestratorAlreadyRegisteredClearsPendingCode(t *testing.T) {
	registrar := newFakeRegistrar()
	registrar.seed("promoter", "PROMO234")
	other := registrar.seed("other", "OTHER234")
	store := &fakePendingStore{codes: map[string]string{"visitor-1": other.ReferralCode}}
	orchestrator := NewOrchestrator(registrar, store)

	result, err := orchestrator.Run(context.Background(), "promoter", "visitor-1")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.AlreadyRegistered {
		t.Fatalf("expected already_registered=true")
	}
	// 已有档案时暂存推荐码不再可用，应一并清掉
	if _, remaining, _ := store.Consume(context.Background(), "visitor-1"); remaining {
		t.Fatalf("pending code should be cleared for registered user")
	}
}

func TestOrchestratorWithoutVisitorKey(t *testing.T) {
	registrar := newFakeRegistrar()
	orchestrator := NewOrchestrator(registrar, &fakePendingStore{codes: map[string]string{"visitor-1": "PROMO234"}})

	result, err := orchestrator.Run(context.Background(), "newcomer", "")
	if err != nil {
		t.Fatalf("run without visitor key failed: %v", err)
	}
	if result.UsedPendingCode != "" {
		t.Fatalf("no visitor key should mean no pending code")
	}
	if result.Referral.ReferredByCode != nil {
		t.Fatalf("registration should have no referrer")
	}
}

func TestOrchestratorInflightGuard(t *testing.T) {
	registrar := newFakeRegistrar()
	registrar.checkGate = make(chan struct{})
	orchestrator := NewOrchestrator(registrar, nil)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := orchestrator.Run(context.Background(), "newcomer", "")
		done <- err
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	if _, err := orchestrator.Run(context.Background(), "newcomer", ""); !errors.Is(err, ErrSetupInProgress) {
		t.Fatalf("concurrent run want ErrSetupInProgress got %v", err)
	}

	close(registrar.checkGate)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// 流程结束后可再次发起
	if _, err := orchestrator.Run(context.Background(), "newcomer", ""); err != nil {
		t.Fatalf("rerun after release failed: %v", err)
	}
}

func TestOrchestratorBlankUser(t *testing.T) {
	orchestrator := NewOrchestrator(newFakeRegistrar(), nil)
	if _, err := orchestrator.Run(context.Background(), "   ", ""); !errors.Is(err, service.ErrInvalidUserID) {
		t.Fatalf("blank user want ErrInvalidUserID got %v", err)
	}
}
