package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hyppocampe/internal/config"
	"github.com/hyppocampe/internal/db"
	"github.com/hyppocampe/internal/handler"
	"github.com/hyppocampe/internal/logger"
	"github.com/hyppocampe/internal/realtime"
	"github.com/hyppocampe/internal/router"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	// 演示账户，配置了才创建
	if cfg.DemoEmail != "" && cfg.DemoPassword != "" {
		if err := db.EnsureUser(cfg.DemoEmail, cfg.DemoPassword); err != nil {
			zlog.Fatal("failed to ensure demo user", zap.Error(err))
		}
	}

	hub := realtime.NewHub()
	api := handler.NewAPI(db.DB, hub, zlog, cfg)

	// 进程内调度器，按小时触发每日汇总；外部平台也可以打 /api/jobs/daily-summary
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CronSchedule, func() {
		stats := api.Summaries().Run(time.Now())
		zlog.Info("daily summary run finished",
			zap.Int("users", stats.UsersScanned),
			zap.Int("summaries", stats.Summaries),
			zap.Int("deadlines", stats.Deadlines),
			zap.Int("tomorrows", stats.Tomorrows))
	}); err != nil {
		zlog.Fatal("failed to schedule daily summary", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg)
	zlog.Info("server listening", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		zlog.Fatal("failed to run server", zap.Error(err))
	}
}
