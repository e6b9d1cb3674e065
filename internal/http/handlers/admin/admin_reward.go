package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/red23-platform/internal/http/response"
	"github.com/red23-platform/internal/repository"
	"github.com/red23-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminRewards 获取奖励列表 (Admin)
func (h *Handler) GetAdminRewards(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rewards, total, err := h.RewardService.List(repository.RewardListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   strings.TrimSpace(c.Query("user_id")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "获取奖励列表失败", err)
		return
	}

	response.SuccessWithPage(c, rewards, response.BuildPagination(page, pageSize, total))
}

// GrantReward 发放奖励 (Admin)
func (h *Handler) GrantReward(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "奖励 ID 无效", nil)
		return
	}

	reward, err := h.RewardService.Grant(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "奖励不存在", nil)
			return
		}
		if errors.Is(err, service.ErrRewardAlreadyGranted) {
			respondError(c, response.CodeConflict, "奖励已发放", nil)
			return
		}
		respondError(c, response.CodeInternal, "发放奖励失败", err)
		return
	}

	response.Success(c, reward)
}
