package service

import (
	"time"

	"github.com/red23-platform/internal/constants"
	"github.com/red23-platform/internal/logger"
	"github.com/red23-platform/internal/models"
	"github.com/red23-platform/internal/repository"
)

const newsFanoutPageSize = 200

// PostService 新闻/公告业务服务
type PostService struct {
	repo          repository.PostRepository
	referrals     repository.ReferralRepository
	notifications *NotificationService
}

// NewPostService 创建文章服务
func NewPostService(
	repo repository.PostRepository,
	referrals repository.ReferralRepository,
	notifications *NotificationService,
) *PostService {
	return &PostService{
		repo:          repo,
		referrals:     referrals,
		notifications: notifications,
	}
}

// CreatePostInput 创建/更新文章输入
type CreatePostInput struct {
	Slug        string
	Type        string
	TitleJSON   map[string]interface{}
	SummaryJSON map[string]interface{}
	ContentJSON map[string]interface{}
	Thumbnail   string
	IsPublished *bool
}

var allowedPostTypes = map[string]struct{}{
	constants.PostTypeNews:         {},
	constants.PostTypeAnnouncement: {},
}

// ListPublic 获取公开文章列表
func (s *PostService) ListPublic(postType string, page, pageSize int) ([]models.Post, int64, error) {
	filter := repository.PostListFilter{
		Page:          page,
		PageSize:      pageSize,
		Type:          postType,
		OnlyPublished: true,
		OrderBy:       "published_at DESC, created_at DESC",
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开文章详情
func (s *PostService) GetPublicBySlug(slug string) (*models.Post, error) {
	post, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// ListAdmin 获取后台文章列表
func (s *PostService) ListAdmin(postType, search string, page, pageSize int) ([]models.Post, int64, error) {
	filter := repository.PostListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     postType,
		Search:   search,
		OrderBy:  "created_at DESC",
	}
	return s.repo.List(filter)
}

// Create 创建文章
func (s *PostService) Create(input CreatePostInput) (*models.Post, error) {
	if !isAllowedPostType(input.Type) {
		return nil, ErrInvalidPostType
	}

	count, err := s.repo.CountBySlug(input.Slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	isPublished := false
	if input.IsPublished != nil {
		isPublished = *input.IsPublished
	}

	post := models.Post{
		Slug:        input.Slug,
		Type:        input.Type,
		TitleJSON:   models.JSON(input.TitleJSON),
		SummaryJSON: models.JSON(input.SummaryJSON),
		ContentJSON: models.JSON(input.ContentJSON),
		Thumbnail:   input.Thumbnail,
		IsPublished: isPublished,
	}
	if isPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.repo.Create(&post); err != nil {
		return nil, err
	}
	if isPublished {
		s.fanoutNewsPublished(&post)
	}
	return &post, nil
}

// Update 更新文章
func (s *PostService) Update(id string, input CreatePostInput) (*models.Post, error) {
	if !isAllowedPostType(input.Type) {
		return nil, ErrInvalidPostType
	}

	post, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	count, err := s.repo.CountBySlug(input.Slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	wasPublished := post.IsPublished

	post.Slug = input.Slug
	post.Type = input.Type
	post.TitleJSON = models.JSON(input.TitleJSON)
	post.SummaryJSON = models.JSON(input.SummaryJSON)
	post.ContentJSON = models.JSON(input.ContentJSON)
	post.Thumbnail = input.Thumbnail
	if input.IsPublished != nil {
		post.IsPublished = *input.IsPublished
	}
	if post.IsPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.repo.Update(post); err != nil {
		return nil, err
	}
	if post.IsPublished && !wasPublished {
		s.fanoutNewsPublished(post)
	}
	return post, nil
}

// Delete 删除文章
func (s *PostService) Delete(id string) error {
	post, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

// fanoutNewsPublished 向推广计划内的全部用户投递新闻通知，失败仅记录日志
func (s *PostService) fanoutNewsPublished(post *models.Post) {
	if s.referrals == nil || s.notifications == nil {
		return
	}
	payload := NewsPublishedPayload{PostID: post.ID, Slug: post.Slug}
	for page := 1; ; page++ {
		rows, _, err := s.referrals.List(repository.ReferralListFilter{
			Page:     page,
			PageSize: newsFanoutPageSize,
		})
		if err != nil {
			logger.Warnw("news_published_fanout_failed", "post_id", post.ID, "error", err)
			return
		}
		for _, row := range rows {
			if err := s.notifications.PublishNewsPublished(row.UserID, payload); err != nil {
				logger.Warnw("news_published_notify_failed",
					"post_id", post.ID,
					"user_id", row.UserID,
					"error", err,
				)
			}
		}
		if len(rows) < newsFanoutPageSize {
			return
		}
	}
}

func isAllowedPostType(postType string) bool {
	_, ok := allowedPostTypes[postType]
	return ok
}
