package public

import (
	"strconv"

	"github.com/red23-platform/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetMyRewards 获取我的奖励列表
func (h *Handler) GetMyRewards(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rewards, total, err := h.RewardService.ListByUser(userID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "获取奖励列表失败", err)
		return
	}

	response.SuccessWithPage(c, rewards, response.BuildPagination(page, pageSize, total))
}
