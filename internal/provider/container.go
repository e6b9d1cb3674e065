package provider

import (
	"time"

	"github.com/red23-platform/internal/authz"
	"github.com/red23-platform/internal/autosetup"
	"github.com/red23-platform/internal/cache"
	"github.com/red23-platform/internal/config"
	"github.com/red23-platform/internal/logger"
	"github.com/red23-platform/internal/models"
	"github.com/red23-platform/internal/queue"
	"github.com/red23-platform/internal/repository"
	"github.com/red23-platform/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	ReferralRepo     repository.ReferralRepository
	RewardRepo       repository.RewardRepository
	NotificationRepo repository.NotificationRepository
	PostRepo         repository.PostRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CaptchaService      *service.CaptchaService
	ReferralService     *service.ReferralService
	RewardService       *service.RewardService
	NotificationService *service.NotificationService
	PostService         *service.PostService

	PendingCodeStore *cache.PendingReferralCodeStore
	Orchestrator     *autosetup.Orchestrator
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.RewardRepo = repository.NewRewardRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.PostRepo = repository.NewPostRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)

	rewardAmount, err := models.NewMoneyFromString(c.Config.Referral.RewardAmount)
	if err != nil {
		logger.Errorw("provider_parse_reward_amount_failed", "amount", c.Config.Referral.RewardAmount, "error", err)
		panic(err)
	}

	c.ReferralService = service.NewReferralService(c.ReferralRepo, c.NotificationService, c.QueueClient, service.ReferralServiceOptions{
		Milestone:           c.Config.Referral.Milestone,
		CodeLength:          c.Config.Referral.CodeLength,
		MaxGenerateAttempts: c.Config.Referral.MaxGenerateAttempts,
		TermsVersion:        c.Config.Referral.CurrentTermsVersion,
	})
	c.RewardService = service.NewRewardService(c.RewardRepo, c.ReferralRepo, c.NotificationService, c.Config.Referral.Milestone, rewardAmount)
	c.PostService = service.NewPostService(c.PostRepo, c.ReferralRepo, c.NotificationService)

	pendingTTL := time.Duration(c.Config.Referral.PendingCodeTTLSeconds) * time.Second
	c.PendingCodeStore = cache.NewPendingReferralCodeStore(pendingTTL)
	c.Orchestrator = autosetup.NewOrchestrator(c.ReferralService, c.PendingCodeStore)
}
