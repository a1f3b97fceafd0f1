package config

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr      string
	Port            string
	DatabasePath    string
	SessionSecret   string
	GinMode         string
	LogLevel        string
	UploadDir       string
	UploadURLPath   string
	CronSecret      string
	CronSchedule    string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string
	DemoEmail       string
	DemoPassword    string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "hyppocampe.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "hyppocampe-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	logLevel := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "info"
	}

	uploadDir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}

	uploadURLPath := strings.TrimSpace(os.Getenv("UPLOAD_URL_PATH"))
	if uploadURLPath == "" {
		uploadURLPath = "/static/uploads"
	}

	cronSchedule := strings.TrimSpace(os.Getenv("CRON_SCHEDULE"))
	if cronSchedule == "" {
		// 每小时整点跑一次，配合 summary_hour 的小时粒度匹配
		cronSchedule = "0 * * * *"
	}

	vapidSubscriber := strings.TrimSpace(os.Getenv("VAPID_SUBSCRIBER"))
	if vapidSubscriber == "" {
		vapidSubscriber = "mailto:fred@controlcenter.com"
	}

	cronSecret := strings.TrimSpace(os.Getenv("CRON_SECRET"))
	vapidPublicKey := strings.TrimSpace(os.Getenv("VAPID_PUBLIC_KEY"))
	vapidPrivateKey := strings.TrimSpace(os.Getenv("VAPID_PRIVATE_KEY"))
	demoEmail := strings.TrimSpace(os.Getenv("DEMO_EMAIL"))
	demoPassword := strings.TrimSpace(os.Getenv("DEMO_PASSWORD"))

	return AppConfig{
		ListenAddr:      listenAddr,
		Port:            port,
		DatabasePath:    databasePath,
		SessionSecret:   sessionSecret,
		GinMode:         ginMode,
		LogLevel:        logLevel,
		UploadDir:       uploadDir,
		UploadURLPath:   uploadURLPath,
		CronSecret:      cronSecret,
		CronSchedule:    cronSchedule,
		VAPIDPublicKey:  vapidPublicKey,
		VAPIDPrivateKey: vapidPrivateKey,
		VAPIDSubscriber: vapidSubscriber,
		DemoEmail:       demoEmail,
		DemoPassword:    demoPassword,
	}
}
