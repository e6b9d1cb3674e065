package public

import (
	"errors"

	"github.com/red23-platform/internal/autosetup"
	"github.com/red23-platform/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AutoSetupReferralRequest 自动建档请求
type AutoSetupReferralRequest struct {
	VisitorKey string `json:"visitor_key"`
}

// AutoSetupReferral 认证完成后自动建立推广档案
// 携带 visitor_key 时会消费落地页暂存的推荐码。
func (h *Handler) AutoSetupReferral(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req AutoSetupReferralRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "请求参数错误", err)
			return
		}
	}

	if h.Orchestrator == nil {
		respondError(c, response.CodeInternal, "自动建档不可用", nil)
		return
	}

	result, err := h.Orchestrator.Run(c.Request.Context(), userID, req.VisitorKey)
	if err != nil {
		if errors.Is(err, autosetup.ErrSetupInProgress) {
			respondError(c, response.CodeTooManyRequests, "自动建档正在进行中", nil)
			return
		}
		respondReferralRegisterError(c, err)
		return
	}

	response.Success(c, result)
}
