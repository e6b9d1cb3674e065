package autosetup

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/red23-platform/internal/logger"
	"github.com/red23-platform/internal/models"
	"github.com/red23-platform/internal/service"
)

// ErrSetupInProgress 同一用户的建档流程正在进行
var ErrSetupInProgress = errors.New("自动建档正在进行中")

// Registrar 推广建档入口，由推广服务实现
type Registrar interface {
	GetByUserID(userID string) (*models.UserReferral, error)
	Register(userID, referredByCode string) (*models.UserReferral, error)
}

// PendingCodeStore 访客落地推荐码暂存；Consume 读取即清除
type PendingCodeStore interface {
	Consume(ctx context.Context, visitorKey string) (string, bool, error)
}

// Result 自动建档结果
type Result struct {
	Referral          *models.UserReferral `json:"referral"`
	AlreadyRegistered bool                 `json:"already_registered"`
	UsedPendingCode   string               `json:"used_pending_code,omitempty"`
}

// Orchestrator 自动建档编排器
// 认证完成后建立推广档案：查档 → 消费暂存推荐码 → 注册。
// 同一用户同一时刻只允许一个流程在跑。
type Orchestrator struct {
	registrar Registrar
	store     PendingCodeStore

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewOrchestrator 创建自动建档编排器
func NewOrchestrator(registrar Registrar, store PendingCodeStore) *Orchestrator {
	return &Orchestrator{
		registrar: registrar,
		store:     store,
		inflight:  make(map[string]struct{}),
	}
}

// Run 驱动一次完整的自动建档流程
func (o *Orchestrator) Run(ctx context.Context, userID, visitorKey string) (*Result, error) {
	if o == nil || o.registrar == nil {
		return nil, service.ErrNotFound
	}
	trimmedUserID := strings.TrimSpace(userID)
	if trimmedUserID == "" {
		return nil, service.ErrInvalidUserID
	}

	if !o.acquire(trimmedUserID) {
		return nil, ErrSetupInProgress
	}
	defer o.release(trimmedUserID)

	machine := NewMachine()
	if err := machine.Apply(EventAuthReady); err != nil {
		return nil, err
	}

	// checking：已有档案视为成功结束；暂存推荐码已无用处，顺带清掉
	existing, err := o.registrar.GetByUserID(trimmedUserID)
	if err == nil && existing != nil {
		o.consumePendingCode(ctx, trimmedUserID, visitorKey)
		if err := machine.FinishChecked(); err != nil {
			return nil, err
		}
		return &Result{Referral: existing, AlreadyRegistered: true}, nil
	}
	if err != nil && !errors.Is(err, service.ErrUserNotRegistered) {
		return nil, err
	}

	if err := machine.BeginRegistration(); err != nil {
		return nil, err
	}

	pendingCode := o.consumePendingCode(ctx, trimmedUserID, visitorKey)

	referral, registerErr := o.registrar.Register(trimmedUserID, pendingCode)

	if err := machine.Apply(EventRegistrationResult); err != nil {
		return nil, err
	}

	if registerErr != nil {
		// 并发建档：重复注册视为成功
		if errors.Is(registerErr, service.ErrAlreadyRegistered) {
			existing, lookupErr := o.registrar.GetByUserID(trimmedUserID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return &Result{Referral: existing, AlreadyRegistered: true}, nil
		}
		// 暂存推荐码无效时失败原样返回，不替用户改用无推荐人注册；
		// 码在读取时已被清除，用户下次发起即可干净重试
		if pendingCode != "" && isInvalidPendingCode(registerErr) {
			logger.Warnw("auto_setup_pending_code_rejected",
				"user_id", trimmedUserID,
				"pending_code", pendingCode,
				"error", registerErr,
			)
		}
		return nil, registerErr
	}

	return &Result{Referral: referral, UsedPendingCode: pendingCode}, nil
}

func (o *Orchestrator) consumePendingCode(ctx context.Context, userID, visitorKey string) string {
	if o.store == nil || strings.TrimSpace(visitorKey) == "" {
		return ""
	}
	code, found, err := o.store.Consume(ctx, visitorKey)
	if err != nil {
		logger.Warnw("auto_setup_pending_code_read_failed",
			"user_id", userID,
			"visitor_key", visitorKey,
			"error", err,
		)
		return ""
	}
	if !found {
		return ""
	}
	return code
}

func (o *Orchestrator) acquire(userID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[userID]; busy {
		return false
	}
	o.inflight[userID] = struct{}{}
	return true
}

func (o *Orchestrator) release(userID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, userID)
}

func isInvalidPendingCode(err error) bool {
	return errors.Is(err, service.ErrInvalidReferrerCode) || errors.Is(err, service.ErrSelfReferralNotAllowed)
}
