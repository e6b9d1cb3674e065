package public

import (
	"strings"

	"github.com/red23-platform/internal/http/response"
	"github.com/red23-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// SavePendingReferralCodeRequest 暂存落地页推荐码请求
type SavePendingReferralCodeRequest struct {
	VisitorKey   string `json:"visitor_key" binding:"required"`
	ReferralCode string `json:"referral_code" binding:"required"`
}

// SavePendingReferralCode 暂存落地页推荐码
// 访客点击推广链接时调用，注册完成后由自动建档消费。
func (h *Handler) SavePendingReferralCode(c *gin.Context) {
	var req SavePendingReferralCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	code := service.NormalizeReferralCode(req.ReferralCode)
	if result := service.ValidateReferralCodeFormat(code); !result.IsValid {
		respondError(c, response.CodeBadRequest, "推荐码格式无效", nil)
		return
	}

	exists, err := h.ReferralService.ValidateExists(code)
	if err != nil {
		respondError(c, response.CodeInternal, "校验推荐码失败", err)
		return
	}
	if !exists {
		respondError(c, response.CodeNotFound, "推荐码不存在", nil)
		return
	}

	if h.PendingCodeStore == nil {
		respondError(c, response.CodeInternal, "推荐码暂存不可用", nil)
		return
	}
	if err := h.PendingCodeStore.Save(c.Request.Context(), strings.TrimSpace(req.VisitorKey), code); err != nil {
		respondError(c, response.CodeInternal, "暂存推荐码失败", err)
		return
	}

	response.Success(c, gin.H{"saved": true})
}

// ValidateReferralCode 校验推荐码是否存在
func (h *Handler) ValidateReferralCode(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "推荐码不能为空", nil)
		return
	}

	exists, err := h.ReferralService.ValidateExists(code)
	if err != nil {
		respondError(c, response.CodeInternal, "校验推荐码失败", err)
		return
	}

	response.Success(c, gin.H{"exists": exists})
}
