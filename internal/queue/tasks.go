package queue

import (
	"encoding/json"

	"github.com/red23-platform/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 通知分发任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
	// TaskMilestoneCheck 里程碑奖励核算任务
	TaskMilestoneCheck = constants.TaskMilestoneCheck
)

// NotificationDispatchPayload 通知分发任务载荷
type NotificationDispatchPayload struct {
	NotificationID uint `json:"notification_id"`
}

// MilestoneCheckPayload 里程碑奖励核算任务载荷
type MilestoneCheckPayload struct {
	UserID string `json:"user_id"`
}

// NewNotificationDispatchTask 创建通知分发任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}

// NewMilestoneCheckTask 创建里程碑奖励核算任务
func NewMilestoneCheckTask(payload MilestoneCheckPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMilestoneCheck, body), nil
}
