package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/red23-platform/internal/constants"
	"github.com/red23-platform/internal/models"

	"gorm.io/gorm"
)

// RewardRepository 里程碑奖励数据访问接口
type RewardRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) RewardRepository

	GetByID(id uint) (*models.ReferralReward, error)
	Create(reward *models.ReferralReward) error
	MaxMilestoneIndex(userID string) (int, error)
	ListByUser(userID string, page, pageSize int) ([]models.ReferralReward, int64, error)
	List(filter RewardListFilter) ([]models.ReferralReward, int64, error)
	MarkGranted(id uint, grantedAt time.Time) (int64, error)
}

// GormRewardRepository GORM 里程碑奖励仓储
type GormRewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository 创建里程碑奖励仓储
func NewRewardRepository(db *gorm.DB) *GormRewardRepository {
	return &GormRewardRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRewardRepository) WithTx(tx *gorm.DB) RewardRepository {
	if tx == nil {
		return r
	}
	return &GormRewardRepository{db: tx}
}

// Transaction 执行事务
func (r *GormRewardRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取奖励记录
func (r *GormRewardRepository) GetByID(id uint) (*models.ReferralReward, error) {
	if id == 0 {
		return nil, nil
	}
	var reward models.ReferralReward
	if err := r.db.First(&reward, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reward, nil
}

// Create 创建奖励记录
func (r *GormRewardRepository) Create(reward *models.ReferralReward) error {
	return r.db.Create(reward).Error
}

// MaxMilestoneIndex 查询用户已记录的最大里程碑序号
func (r *GormRewardRepository) MaxMilestoneIndex(userID string) (int, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return 0, nil
	}
	var row struct {
		Max int `gorm:"column:max_index"`
	}
	if err := r.db.Model(&models.ReferralReward{}).
		Select("COALESCE(MAX(milestone_index), 0) AS max_index").
		Where("user_id = ?", trimmed).
		Scan(&row).Error; err != nil {
		return 0, err
	}
	return row.Max, nil
}

// ListByUser 查询用户的奖励记录（按里程碑倒序）
func (r *GormRewardRepository) ListByUser(userID string, page, pageSize int) ([]models.ReferralReward, int64, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return []models.ReferralReward{}, 0, nil
	}
	query := r.db.Model(&models.ReferralReward{}).Where("user_id = ?", trimmed)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)

	var rows []models.ReferralReward
	if err := query.Order("milestone_index DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// List 查询奖励记录列表
func (r *GormRewardRepository) List(filter RewardListFilter) ([]models.ReferralReward, int64, error) {
	query := r.db.Model(&models.ReferralReward{})
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.ReferralReward
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkGranted 将待发放奖励标记为已发放
func (r *GormRewardRepository) MarkGranted(id uint, grantedAt time.Time) (int64, error) {
	if id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.ReferralReward{}).
		Where("id = ? AND status = ?", id, constants.RewardStatusPending).
		Updates(map[string]interface{}{
			"status":     constants.RewardStatusGranted,
			"granted_at": grantedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
