package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/red23-platform/internal/models"

	"gorm.io/gorm"
)

// ReferralRepository 推广档案数据访问接口
type ReferralRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ReferralRepository

	GetByID(id uint) (*models.UserReferral, error)
	GetByUserID(userID string) (*models.UserReferral, error)
	GetByCode(code string) (*models.UserReferral, error)
	Create(referral *models.UserReferral) error
	UpdateTerms(userID, version string, acceptedAt time.Time) error
	CountByReferrerCode(code string) (int64, error)
	ListByReferrerCode(code string, page, pageSize int) ([]models.UserReferral, int64, error)
	ListReferrerCodes() ([]string, error)
	List(filter ReferralListFilter) ([]models.UserReferral, int64, error)
}

// GormReferralRepository GORM 推广档案仓储
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建推广档案仓储
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) ReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// Transaction 执行事务
func (r *GormReferralRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取推广档案
func (r *GormReferralRepository) GetByID(id uint) (*models.UserReferral, error) {
	if id == 0 {
		return nil, nil
	}
	var referral models.UserReferral
	if err := r.db.First(&referral, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByUserID 按用户标识获取推广档案
func (r *GormReferralRepository) GetByUserID(userID string) (*models.UserReferral, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return nil, nil
	}
	var referral models.UserReferral
	if err := r.db.Where("user_id = ?", trimmed).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByCode 按推广码获取推广档案
func (r *GormReferralRepository) GetByCode(code string) (*models.UserReferral, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var referral models.UserReferral
	if err := r.db.Where("referral_code = ?", normalized).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// Create 创建推广档案
func (r *GormReferralRepository) Create(referral *models.UserReferral) error {
	return r.db.Create(referral).Error
}

// UpdateTerms 更新条款接受记录
func (r *GormReferralRepository) UpdateTerms(userID, version string, acceptedAt time.Time) error {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return nil
	}
	return r.db.Model(&models.UserReferral{}).
		Where("user_id = ?", trimmed).
		Updates(map[string]interface{}{
			"terms_version":     strings.TrimSpace(version),
			"terms_accepted_at": acceptedAt,
			"updated_at":        acceptedAt,
		}).Error
}

// CountByReferrerCode 统计使用指定推荐码完成注册的用户数
func (r *GormReferralRepository) CountByReferrerCode(code string) (int64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.UserReferral{}).
		Where("referred_by_code = ?", normalized).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ListByReferrerCode 查询使用指定推荐码注册的用户列表（按注册时间倒序）
func (r *GormReferralRepository) ListByReferrerCode(code string, page, pageSize int) ([]models.UserReferral, int64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return []models.UserReferral{}, 0, nil
	}
	query := r.db.Model(&models.UserReferral{}).Where("referred_by_code = ?", normalized)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)

	var rows []models.UserReferral
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListReferrerCodes 查询所有被引用过的推荐码（去重）
func (r *GormReferralRepository) ListReferrerCodes() ([]string, error) {
	var codes []string
	if err := r.db.Model(&models.UserReferral{}).
		Where("referred_by_code IS NOT NULL AND referred_by_code <> ''").
		Distinct("referred_by_code").
		Pluck("referred_by_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// List 查询推广档案列表
func (r *GormReferralRepository) List(filter ReferralListFilter) ([]models.UserReferral, int64, error) {
	query := r.db.Model(&models.UserReferral{})
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("referral_code = ?", strings.ToUpper(code))
	}
	if referrer := strings.TrimSpace(filter.ReferredByCode); referrer != "" {
		query = query.Where("referred_by_code = ?", strings.ToUpper(referrer))
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.UserReferral
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
