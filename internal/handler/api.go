package handler

import (
	"github.com/hyppocampe/internal/config"
	"github.com/hyppocampe/internal/realtime"
	"github.com/hyppocampe/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db            *gorm.DB
	log           *zap.Logger
	hub           *realtime.Hub
	tasks         *service.TaskService
	memories      *service.MemoryService
	notifications *service.NotificationService
	settings      *service.SettingsService
	summaries     *service.SummaryService
	push          *service.PushService
	uploadDir     string
	uploadURL     string
	cronSecret    string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, hub *realtime.Hub, log *zap.Logger, cfg config.AppConfig) *API {
	if log == nil {
		log = zap.NewNop()
	}

	pushService := service.NewPushService(gdb, log, cfg.VAPIDSubscriber, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	notificationService := service.NewNotificationService(gdb, hub, pushService)

	return &API{
		db:            gdb,
		log:           log,
		hub:           hub,
		tasks:         service.NewTaskService(gdb, hub),
		memories:      service.NewMemoryService(gdb, hub),
		notifications: notificationService,
		settings:      service.NewSettingsService(gdb),
		summaries:     service.NewSummaryService(gdb, notificationService, pushService, log),
		push:          pushService,
		uploadDir:     cfg.UploadDir,
		uploadURL:     cfg.UploadURLPath,
		cronSecret:    cfg.CronSecret,
	}
}

// Summaries exposes the daily job service for the in-process scheduler.
func (a *API) Summaries() *service.SummaryService {
	return a.summaries
}
