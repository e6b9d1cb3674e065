package public

import (
	"errors"

	handlershared "github.com/red23-platform/internal/http/handlers/shared"
	"github.com/red23-platform/internal/http/response"
	"github.com/red23-platform/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var referralRegisterErrorRules = []mappedHandlerError{
	{target: service.ErrAlreadyRegistered, code: response.CodeConflict, msg: "已加入推广计划"},
	{target: service.ErrInvalidReferrerCode, code: response.CodeBadRequest, msg: "推荐码不存在"},
	{target: service.ErrSelfReferralNotAllowed, code: response.CodeBadRequest, msg: "不能使用自己的推荐码"},
	{target: service.ErrInvalidUserID, code: response.CodeBadRequest, msg: "用户标识无效"},
	{target: service.ErrCodeGenerationExhausted, code: response.CodeInternal, msg: "推荐码生成失败，请稍后重试"},
}

func respondReferralRegisterError(c *gin.Context, err error) {
	respondWithMappedError(c, err, referralRegisterErrorRules, response.CodeInternal, "加入推广计划失败")
}
