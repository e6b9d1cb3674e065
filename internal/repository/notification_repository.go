package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/red23-platform/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	GetByID(id uint) (*models.Notification, error)
	Create(notification *models.Notification) error
	List(filter NotificationListFilter) ([]models.Notification, int64, error)
	MarkRead(id uint, userID string, readAt time.Time) (int64, error)
	MarkDispatched(id uint, dispatchedAt time.Time) error
}

// GormNotificationRepository GORM 通知仓储
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// GetByID 按ID获取通知
func (r *GormNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	if id == 0 {
		return nil, nil
	}
	var notification models.Notification
	if err := r.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// Create 创建通知
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// List 查询通知列表
func (r *GormNotificationRepository) List(filter NotificationListFilter) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{})
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Notification
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkRead 将通知标记为已读（仅限本人且未读的记录）
func (r *GormNotificationRepository) MarkRead(id uint, userID string, readAt time.Time) (int64, error) {
	trimmed := strings.TrimSpace(userID)
	if id == 0 || trimmed == "" {
		return 0, nil
	}
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, trimmed).
		Update("read_at", readAt)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// MarkDispatched 记录通知分发完成时间
func (r *GormNotificationRepository) MarkDispatched(id uint, dispatchedAt time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND dispatched_at IS NULL", id).
		Update("dispatched_at", dispatchedAt).Error
}
