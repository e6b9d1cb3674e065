package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody 错误响应内容
type ErrorBody struct {
	Code      int         `json:"code"`                 // 业务状态码（与 HTTP 状态一致）
	Message   string      `json:"message"`              // 提示消息
	RequestID string      `json:"request_id,omitempty"` // 请求追踪标识
	Details   interface{} `json:"details,omitempty"`    // 附加信息
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// BuildPagination 构造分页信息
func BuildPagination(page, pageSize int, total int64) Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, items interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"items":      items,
			"pagination": pagination,
		},
	})
}

// Error 错误响应，statusCode 同时作为 HTTP 状态码输出
func Error(c *gin.Context, statusCode int, msg string) {
	ErrorWithDetails(c, statusCode, msg, nil)
}

// ErrorWithDetails 错误响应（带附加信息）
func ErrorWithDetails(c *gin.Context, statusCode int, msg string, details interface{}) {
	c.JSON(httpStatusFor(statusCode), Response{
		Success: false,
		Error: &ErrorBody{
			Code:      statusCode,
			Message:   msg,
			RequestID: requestIDFrom(c),
			Details:   details,
		},
	})
}

// NotFound 404响应
func NotFound(c *gin.Context, msg string) {
	Error(c, CodeNotFound, msg)
}

// Unauthorized 401响应
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 403响应
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

// BadRequest 400响应
func BadRequest(c *gin.Context, msg string) {
	Error(c, CodeBadRequest, msg)
}

func httpStatusFor(statusCode int) int {
	if statusCode >= http.StatusBadRequest && statusCode <= 599 {
		return statusCode
	}
	return http.StatusInternalServerError
}

func requestIDFrom(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
