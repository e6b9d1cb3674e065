package admin

import (
	handlershared "github.com/red23-platform/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "管理员标识无效", "管理员标识类型错误")
}
