package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// userIDKey 是 AuthRequired 写入 gin.Context 的键
const userIDKey = "user_id"

// currentUserID 取出当前登录用户，未登录返回 false
// 优先读中间件写入的上下文键，直连会话作为兜底
func currentUserID(c *gin.Context) (uint, bool) {
	if raw, exists := c.Get(userIDKey); exists {
		id, ok := raw.(uint)
		return id, ok
	}
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return 0, false
	}
	raw := sessions.Default(c).Get(userIDKey)
	if raw == nil {
		return 0, false
	}
	id, ok := raw.(uint)
	return id, ok
}
