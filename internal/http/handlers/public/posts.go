package public

import (
	"errors"
	"strconv"

	"github.com/red23-platform/internal/http/response"
	"github.com/red23-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPosts 获取新闻/公告列表
func (h *Handler) GetPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	postType := c.Query("type") // news 或 announcement

	posts, total, err := h.PostService.ListPublic(postType, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "获取文章列表失败", err)
		return
	}

	response.SuccessWithPage(c, posts, response.BuildPagination(page, pageSize, total))
}

// GetPostBySlug 根据 slug 获取文章详情
func (h *Handler) GetPostBySlug(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.PostService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "文章不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取文章失败", err)
		return
	}

	response.Success(c, post)
}
