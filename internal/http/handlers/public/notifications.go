package public

import (
	"errors"
	"strconv"

	"github.com/red23-platform/internal/http/response"
	"github.com/red23-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMyNotifications 获取我的通知列表
func (h *Handler) GetMyNotifications(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	unreadOnly := c.Query("unread_only") == "true"

	notifications, total, err := h.NotificationService.List(userID, unreadOnly, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "获取通知列表失败", err)
		return
	}

	response.SuccessWithPage(c, notifications, response.BuildPagination(page, pageSize, total))
}

// MarkNotificationRead 标记通知为已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "通知 ID 无效", nil)
		return
	}

	if err := h.NotificationService.MarkRead(uint(id), userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "通知不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "标记已读失败", err)
		return
	}

	response.Success(c, gin.H{"read": true})
}
