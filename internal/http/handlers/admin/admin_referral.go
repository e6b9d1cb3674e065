package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/red23-platform/internal/http/response"
	"github.com/red23-platform/internal/repository"
	"github.com/red23-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminReferrals 获取推广档案列表 (Admin)
func (h *Handler) GetAdminReferrals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ReferralListFilter{
		Page:           page,
		PageSize:       pageSize,
		UserID:         strings.TrimSpace(c.Query("user_id")),
		Code:           strings.TrimSpace(c.Query("code")),
		ReferredByCode: strings.TrimSpace(c.Query("referred_by_code")),
	}
	if from := strings.TrimSpace(c.Query("created_from")); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if to := strings.TrimSpace(c.Query("created_to")); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.CreatedTo = &t
		}
	}

	referrals, total, err := h.ReferralService.ListRegistrations(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取推广档案列表失败", err)
		return
	}

	response.SuccessWithPage(c, referrals, response.BuildPagination(page, pageSize, total))
}

// GetAdminReferralStats 获取推广档案统计 (Admin)
func (h *Handler) GetAdminReferralStats(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "档案 ID 无效", nil)
		return
	}

	stats, err := h.ReferralService.GetStatsByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "推广档案不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取推广统计失败", err)
		return
	}

	response.Success(c, stats)
}
