package main

import (
	"fmt"
	"time"

	"github.com/red23-platform/internal/config"
	"github.com/red23-platform/internal/constants"
	"github.com/red23-platform/internal/logger"
	"github.com/red23-platform/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	seedReferrals(stdLog)
	seedRewards(stdLog)
	seedPosts(stdLog)

	fmt.Println("Seed 完成")
}

type stdLogger interface {
	Printf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})
}

// seedReferrals 预置推广档案：一个推广人带若干被推荐用户
func seedReferrals(stdLog stdLogger) {
	now := time.Now()
	promoterCode := "DEMO23AB"
	termsVersion := "2026-01"

	promoter := models.UserReferral{
		UserID:          "demo-user-0001",
		ReferralCode:    promoterCode,
		TermsVersion:    termsVersion,
		TermsAcceptedAt: &now,
	}
	if err := models.DB.Where("user_id = ?", promoter.UserID).FirstOrCreate(&promoter).Error; err != nil {
		stdLog.Fatalf("Failed to seed promoter: %v", err)
	}

	for i := 1; i <= 14; i++ {
		code := promoterCode
		referred := models.UserReferral{
			UserID:         fmt.Sprintf("demo-user-%04d", i+1),
			ReferralCode:   fmt.Sprintf("DEMO%04d", i),
			ReferredByCode: &code,
		}
		if err := models.DB.Where("user_id = ?", referred.UserID).FirstOrCreate(&referred).Error; err != nil {
			stdLog.Fatalf("Failed to seed referred user: %v", err)
		}
	}
	stdLog.Printf("推广档案初始化完成")
}

// seedRewards 预置里程碑奖励：14 个推荐对应 1 个完成的里程碑
func seedRewards(stdLog stdLogger) {
	amount, err := models.NewMoneyFromString("50.00")
	if err != nil {
		stdLog.Fatalf("Failed to parse reward amount: %v", err)
	}
	reward := models.ReferralReward{
		UserID:         "demo-user-0001",
		MilestoneIndex: 1,
		Amount:         amount,
		Status:         constants.RewardStatusPending,
	}
	if err := models.DB.
		Where("user_id = ? AND milestone_index = ?", reward.UserID, reward.MilestoneIndex).
		FirstOrCreate(&reward).Error; err != nil {
		stdLog.Fatalf("Failed to seed reward: %v", err)
	}
	stdLog.Printf("奖励数据初始化完成")
}

// seedPosts 预置新闻与公告
func seedPosts(stdLog stdLogger) {
	now := time.Now()
	posts := []models.Post{
		{
			Slug: "welcome-to-referral-program",
			Type: constants.PostTypeNews,
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "推广计划正式上线",
				"en-US": "Referral Program Launched",
			}),
			SummaryJSON: models.JSON(map[string]interface{}{
				"zh-CN": "邀请好友，赢取奖励",
				"en-US": "Invite friends, earn rewards",
			}),
			ContentJSON: models.JSON(map[string]interface{}{
				"zh-CN": "每成功推荐 12 位用户即可获得一次里程碑奖励。",
				"en-US": "Earn a milestone reward for every 12 successful referrals.",
			}),
			IsPublished: true,
			PublishedAt: &now,
		},
		{
			Slug: "reward-payout-schedule",
			Type: constants.PostTypeAnnouncement,
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "奖励发放时间说明",
				"en-US": "Reward Payout Schedule",
			}),
			ContentJSON: models.JSON(map[string]interface{}{
				"zh-CN": "里程碑奖励将在人工审核后的 3 个工作日内发放。",
				"en-US": "Milestone rewards are paid within 3 business days after review.",
			}),
			IsPublished: true,
			PublishedAt: &now,
		},
	}
	for i := range posts {
		if err := models.DB.Where("slug = ?", posts[i].Slug).FirstOrCreate(&posts[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed post: %v", err)
		}
	}
	stdLog.Printf("文章数据初始化完成")
}
