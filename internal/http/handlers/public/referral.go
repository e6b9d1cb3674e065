package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/red23-platform/internal/http/response"
	"github.com/red23-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterReferralRequest 加入推广计划请求
type RegisterReferralRequest struct {
	ReferredByCode string `json:"referred_by_code"`
}

// RegisterReferral 加入推广计划
func (h *Handler) RegisterReferral(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	// 允许空请求体：无推荐人注册
	var req RegisterReferralRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "请求参数错误", err)
			return
		}
	}

	referral, err := h.ReferralService.Register(userID, req.ReferredByCode)
	if err != nil {
		respondReferralRegisterError(c, err)
		return
	}

	response.Success(c, referral)
}

// GetMyReferral 获取我的推广档案
func (h *Handler) GetMyReferral(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	referral, err := h.ReferralService.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotRegistered) {
			respondError(c, response.CodeNotFound, "尚未加入推广计划", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取推广档案失败", err)
		return
	}

	response.Success(c, referral)
}

// GetMyReferrals 获取我推荐的用户列表
func (h *Handler) GetMyReferrals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	referrals, total, err := h.ReferralService.GetMyReferrals(userID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrUserNotRegistered) {
			respondError(c, response.CodeNotFound, "尚未加入推广计划", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取推荐列表失败", err)
		return
	}

	response.SuccessWithPage(c, referrals, response.BuildPagination(page, pageSize, total))
}

// GetMyReferralStats 获取我的推广统计
func (h *Handler) GetMyReferralStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	stats, err := h.ReferralService.GetStats(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotRegistered) {
			respondError(c, response.CodeNotFound, "尚未加入推广计划", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取推广统计失败", err)
		return
	}

	response.Success(c, stats)
}

// CheckReferralCodeAvailability 检查推荐码可用性
func (h *Handler) CheckReferralCodeAvailability(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "推荐码不能为空", nil)
		return
	}

	result, err := h.ReferralService.CheckAvailability(code, userID)
	if err != nil {
		respondError(c, response.CodeInternal, "检查推荐码失败", err)
		return
	}

	response.Success(c, result)
}

// AcceptReferralTermsRequest 接受推广条款请求
type AcceptReferralTermsRequest struct {
	Version string `json:"version"`
}

// AcceptReferralTerms 接受推广条款
func (h *Handler) AcceptReferralTerms(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req AcceptReferralTermsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "请求参数错误", err)
			return
		}
	}

	referral, err := h.ReferralService.AcceptTerms(userID, req.Version)
	if err != nil {
		if errors.Is(err, service.ErrUserNotRegistered) {
			respondError(c, response.CodeNotFound, "尚未加入推广计划", nil)
			return
		}
		respondError(c, response.CodeInternal, "接受推广条款失败", err)
		return
	}

	response.Success(c, referral)
}
