package router

import (
	"fmt"
	"strings"

	"github.com/red23-platform/internal/cache"
	"github.com/red23-platform/internal/config"
	"github.com/red23-platform/internal/constants"
	adminhandlers "github.com/red23-platform/internal/http/handlers/admin"
	publichandlers "github.com/red23-platform/internal/http/handlers/public"
	"github.com/red23-platform/internal/logger"
	"github.com/red23-platform/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/posts", publicHandler.GetPosts)
			public.GET("/posts/:slug", publicHandler.GetPostBySlug)
			public.GET("/referrals/validate", publicHandler.ValidateReferralCode)
			public.POST("/referrals/pending", publicHandler.SavePendingReferralCode)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户接口（外部认证服务令牌鉴权）
		me := apiV1.Group("/me")
		me.Use(UserTokenAuthMiddleware(c.AuthService))
		{
			me.POST("/referral/register", publicHandler.RegisterReferral)
			me.POST("/referral/auto-setup", publicHandler.AutoSetupReferral)
			me.GET("/referral", publicHandler.GetMyReferral)
			me.GET("/referral/referrals", publicHandler.GetMyReferrals)
			me.GET("/referral/stats", publicHandler.GetMyReferralStats)
			me.GET("/referral/availability", publicHandler.CheckReferralCodeAvailability)
			me.POST("/referral/terms/accept", publicHandler.AcceptReferralTerms)
			me.GET("/rewards", publicHandler.GetMyRewards)
			me.GET("/notifications", publicHandler.GetMyNotifications)
			me.POST("/notifications/:id/read", publicHandler.MarkNotificationRead)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 推广档案
				authorized.GET("/referrals", adminHandler.GetAdminReferrals)
				authorized.GET("/referrals/:id/stats", adminHandler.GetAdminReferralStats)

				// 奖励管理
				authorized.GET("/rewards", adminHandler.GetAdminRewards)
				authorized.POST("/rewards/:id/grant", adminHandler.GrantReward)

				// 文章管理
				authorized.GET("/posts", adminHandler.GetAdminPosts)
				authorized.POST("/posts", adminHandler.CreatePost)
				authorized.PUT("/posts/:id", adminHandler.UpdatePost)
				authorized.DELETE("/posts/:id", adminHandler.DeletePost)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
