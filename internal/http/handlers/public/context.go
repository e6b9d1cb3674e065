package public

import (
	handlershared "github.com/red23-platform/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (string, bool) {
	return handlershared.GetContextStringWithKeys(c, "user_id", "用户标识无效")
}
