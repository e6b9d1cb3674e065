package worker

import (
	"context"
	"errors"
	"time"

	"github.com/red23-platform/internal/config"
	"github.com/red23-platform/internal/logger"
	"github.com/red23-platform/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultMilestoneSweepInterval = 5 * time.Minute

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.RewardService != nil {
		go s.runMilestoneSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runMilestoneSweepLoop 周期性兜底补发里程碑奖励
// 弥补入队失败或宕机期间漏掉的里程碑检查。
func (s *Service) runMilestoneSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.RewardService == nil {
		return
	}
	interval := defaultMilestoneSweepInterval
	if s.consumer.Config != nil && s.consumer.Config.Referral.MilestoneSweepSeconds > 0 {
		interval = time.Duration(s.consumer.Config.Referral.MilestoneSweepSeconds) * time.Second
	}

	runOnce := func() {
		if err := s.sweepMilestones(); err != nil {
			logger.Warnw("worker_milestone_sweep_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) sweepMilestones() error {
	if s.consumer.ReferralRepo == nil {
		return errors.New("referral repository is nil")
	}
	codes, err := s.consumer.ReferralRepo.ListReferrerCodes()
	if err != nil {
		return err
	}
	for _, code := range codes {
		referrer, err := s.consumer.ReferralRepo.GetByCode(code)
		if err != nil {
			logger.Warnw("worker_milestone_sweep_lookup_failed", "referral_code", code, "error", err)
			continue
		}
		if referrer == nil {
			continue
		}
		if _, err := s.consumer.RewardService.EnsureMilestones(referrer.UserID); err != nil {
			logger.Warnw("worker_milestone_sweep_ensure_failed", "user_id", referrer.UserID, "error", err)
		}
	}
	return nil
}
