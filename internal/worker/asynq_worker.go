package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/red23-platform/internal/logger"
	"github.com/red23-platform/internal/provider"
	"github.com/red23-platform/internal/queue"
	"github.com/red23-platform/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
	mux.HandleFunc(queue.TaskMilestoneCheck, c.handleMilestoneCheck)
}

func (c *Consumer) handleNotificationDispatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.NotificationID == 0 {
		logger.Debugw("worker_notification_dispatch_skip_invalid_payload", "notification_id", payload.NotificationID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_dispatch_skip_service_nil", "notification_id", payload.NotificationID)
		return nil
	}
	if err := c.NotificationService.Dispatch(payload.NotificationID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_notification_dispatch_skip_not_found", "notification_id", payload.NotificationID)
			return nil
		}
		logger.Warnw("worker_notification_dispatch_failed", "notification_id", payload.NotificationID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleMilestoneCheck(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_milestone_check_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.MilestoneCheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_milestone_check_unmarshal_failed", "error", err)
		return err
	}
	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		logger.Debugw("worker_milestone_check_skip_invalid_payload")
		return nil
	}
	if c.RewardService == nil {
		logger.Warnw("worker_milestone_check_skip_service_nil", "user_id", userID)
		return nil
	}
	created, err := c.RewardService.EnsureMilestones(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotRegistered):
			logger.Debugw("worker_milestone_check_skip_not_registered", "user_id", userID)
			return nil
		case errors.Is(err, service.ErrInvalidUserID):
			logger.Debugw("worker_milestone_check_skip_invalid_user", "user_id", userID)
			return nil
		default:
			logger.Warnw("worker_milestone_check_failed", "user_id", userID, "error", err)
			return err
		}
	}
	if created > 0 {
		logger.Infow("worker_milestone_check_rewards_created", "user_id", userID, "created", created)
	}
	return nil
}
