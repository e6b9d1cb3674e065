package admin

import (
	"errors"
	"strconv"

	"github.com/red23-platform/internal/http/response"
	"github.com/red23-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminPosts 获取文章列表 (Admin)
func (h *Handler) GetAdminPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	postType := c.Query("type")
	search := c.Query("search")

	posts, total, err := h.PostService.ListAdmin(postType, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "获取文章列表失败", err)
		return
	}

	response.SuccessWithPage(c, posts, response.BuildPagination(page, pageSize, total))
}

// CreatePostRequest 创建文章请求
type CreatePostRequest struct {
	Slug        string                 `json:"slug" binding:"required"`
	Type        string                 `json:"type" binding:"required"` // news 或 announcement
	TitleJSON   map[string]interface{} `json:"title" binding:"required"`
	SummaryJSON map[string]interface{} `json:"summary"`
	ContentJSON map[string]interface{} `json:"content"`
	Thumbnail   string                 `json:"thumbnail"`
	IsPublished *bool                  `json:"is_published"`
}

// CreatePost 创建文章
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	post, err := h.PostService.Create(service.CreatePostInput{
		Slug:        req.Slug,
		Type:        req.Type,
		TitleJSON:   req.TitleJSON,
		SummaryJSON: req.SummaryJSON,
		ContentJSON: req.ContentJSON,
		Thumbnail:   req.Thumbnail,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPostType) {
			respondError(c, response.CodeBadRequest, "文章类型无效", nil)
			return
		}
		if errors.Is(err, service.ErrSlugExists) {
			respondError(c, response.CodeBadRequest, "slug 已存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "创建文章失败", err)
		return
	}

	response.Success(c, post)
}

// UpdatePost 更新文章
func (h *Handler) UpdatePost(c *gin.Context) {
	id := c.Param("id")

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	post, err := h.PostService.Update(id, service.CreatePostInput{
		Slug:        req.Slug,
		Type:        req.Type,
		TitleJSON:   req.TitleJSON,
		SummaryJSON: req.SummaryJSON,
		ContentJSON: req.ContentJSON,
		Thumbnail:   req.Thumbnail,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPostType) {
			respondError(c, response.CodeBadRequest, "文章类型无效", nil)
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "文章不存在", nil)
			return
		}
		if errors.Is(err, service.ErrSlugExists) {
			respondError(c, response.CodeBadRequest, "slug 已被占用", nil)
			return
		}
		respondError(c, response.CodeInternal, "更新文章失败", err)
		return
	}

	response.Success(c, post)
}

// DeletePost 删除文章（软删除）
func (h *Handler) DeletePost(c *gin.Context) {
	id := c.Param("id")

	if err := h.PostService.Delete(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "文章不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除文章失败", err)
		return
	}

	response.Success(c, nil)
}
