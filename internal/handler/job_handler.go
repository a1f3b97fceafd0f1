package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// schedulerAuthorized 校验请求是否来自定时任务平台
// 必须带 X-Cron: 1；配置了 CRON_SECRET 时还需 Bearer 认证
func (a *API) schedulerAuthorized(c *gin.Context) bool {
	if c.GetHeader("X-Cron") != "1" {
		return false
	}
	if a.cronSecret == "" {
		return true
	}
	return c.GetHeader("Authorization") == "Bearer "+a.cronSecret
}

// TriggerDailySummary 执行每日汇总任务，由外部调度器按小时触发
func (a *API) TriggerDailySummary(c *gin.Context) {
	if !a.schedulerAuthorized(c) {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats := a.summaries.Run(time.Now())

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"users":     stats.UsersScanned,
		"summaries": stats.Summaries,
		"deadlines": stats.Deadlines,
		"tomorrow":  stats.Tomorrows,
	})
}

// DebugNotification 直插一条测试通知，仅在非 release 模式下注册
func (a *API) DebugNotification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "未登录")
		return
	}

	notification, err := a.notifications.Create(userID, "🔥 Test direct", "Insertion directe OK", nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "创建测试通知失败")
		return
	}

	c.JSON(http.StatusCreated, notification)
}
