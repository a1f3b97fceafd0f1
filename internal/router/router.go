package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/hyppocampe/internal/config"
	"github.com/hyppocampe/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("hyppocampe_session", store))

	// 上传文件的静态服务
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/auth/register", api.Register)
		apiGroup.POST("/auth/login", api.Login)
		apiGroup.POST("/auth/logout", api.Logout)

		// 定时任务入口，用 X-Cron + Bearer 鉴权，不走会话
		apiGroup.GET("/jobs/daily-summary", api.TriggerDailySummary)
		apiGroup.POST("/push/trigger", api.TriggerPush)

		// 需要登录的 API 路由
		auth := apiGroup.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/auth/me", api.Me)

			auth.GET("/tasks", api.GetTasks)
			auth.POST("/tasks", api.CreateTask)
			auth.PUT("/tasks/:id/status", api.UpdateTaskStatus)
			auth.DELETE("/tasks/:id", api.DeleteTask)

			auth.GET("/memory/sections", api.GetMemorySections)
			auth.POST("/memory/sections", api.CreateMemorySection)
			auth.GET("/memory/sections/:slug", api.GetMemorySection)
			auth.DELETE("/memory/sections/:id", api.DeleteMemorySection)
			auth.POST("/memory/items", api.CreateMemoryItem)
			auth.DELETE("/memory/items/:id", api.DeleteMemoryItem)

			auth.GET("/notifications", api.GetNotifications)
			auth.POST("/notifications", api.CreateNotification)
			auth.PUT("/notifications/:id/read", api.MarkNotificationRead)

			auth.GET("/settings/notifications", api.GetNotificationSettings)
			auth.PUT("/settings/notifications", api.UpdateNotificationSettings)
			auth.GET("/settings/preferences", api.GetPreference)
			auth.PUT("/settings/preferences", api.UpdatePreference)
			auth.POST("/settings/reset-memory", api.ResetMemoryData)

			auth.POST("/push/subscriptions", api.RegisterPushSubscription)
			auth.DELETE("/push/subscriptions", api.UnregisterPushSubscription)

			auth.GET("/events", api.StreamEvents)
			auth.POST("/uploads/memory-image", api.UploadMemoryImage)

			if gin.Mode() != gin.ReleaseMode {
				auth.GET("/debug/notification", api.DebugNotification)
			}
		}
	}

	return r
}
