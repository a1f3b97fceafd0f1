package service

import (
	"fmt"
	"time"

	"github.com/hyppocampe/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SummaryService 实现每日通知任务
// 每次调用扫描所有开启每日摘要的用户；任务按小时粒度匹配 summary_hour，
// 因此外部调度必须至少每小时触发一次，重复触发由通知幂等键兜底

type SummaryService struct {
	db            *gorm.DB
	notifications *NotificationService
	pusher        Pusher
	log           *zap.Logger
}

// SummaryRunStats 汇总一次执行的产出，便于观测
type SummaryRunStats struct {
	UsersScanned  int
	Summaries     int
	Deadlines     int
	Tomorrows     int
	FailedInserts int
}

// NewSummaryService 构造 SummaryService
func NewSummaryService(gdb *gorm.DB, notifications *NotificationService, pusher Pusher, log *zap.Logger) *SummaryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SummaryService{db: gdb, notifications: notifications, pusher: pusher, log: log}
}

// Run 执行一次每日通知扫描
// 单个用户或单条任务的失败只记录日志并继续，不中断整次执行
func (s *SummaryService) Run(now time.Time) SummaryRunStats {
	var stats SummaryRunStats

	var settings []db.NotificationSetting
	if err := s.db.Where("daily_summary = ?", true).Find(&settings).Error; err != nil {
		s.log.Error("daily job: load settings failed", zap.Error(err))
		return stats
	}

	for _, setting := range settings {
		stats.UsersScanned++

		// 小时粒度匹配：整个小时窗口内都会命中，去重靠幂等键
		if setting.SummaryHour != now.Hour() {
			continue
		}

		s.runForUser(setting, now, &stats)
	}

	s.log.Info("daily job finished",
		zap.Int("users_scanned", stats.UsersScanned),
		zap.Int("summaries", stats.Summaries),
		zap.Int("deadlines", stats.Deadlines),
		zap.Int("tomorrows", stats.Tomorrows),
		zap.Int("failed_inserts", stats.FailedInserts))

	return stats
}

func (s *SummaryService) runForUser(setting db.NotificationSetting, now time.Time, stats *SummaryRunStats) {
	userID := setting.UserID

	var tasks []db.Task
	if err := s.db.Where("user_id = ? AND archived = ?", userID, false).Find(&tasks).Error; err != nil {
		s.log.Error("daily job: load tasks failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	var pro, perso int
	var overdue []db.Task
	for _, task := range tasks {
		switch task.Type {
		case db.TaskTypePro:
			pro++
		case db.TaskTypePerso:
			perso++
		}
		if task.Deadline != nil && task.Deadline.Before(now) {
			overdue = append(overdue, task)
		}
	}

	dateKey := now.Format("2006-01-02")

	inserted, err := s.notifications.CreateKeyed(
		userID,
		db.NotificationTypeSummary,
		"summary-"+dateKey,
		"📊 Résumé quotidien",
		fmt.Sprintf("%d PRO • %d PERSO • %d en retard", pro, perso, len(overdue)),
	)
	if err != nil {
		s.log.Error("daily job: summary insert failed", zap.Uint("user_id", userID), zap.Error(err))
		stats.FailedInserts++
	} else if inserted {
		stats.Summaries++

		if err := s.db.Create(&db.DailySummaryLog{UserID: userID, SentAt: now}).Error; err != nil {
			s.log.Error("daily job: summary log failed", zap.Uint("user_id", userID), zap.Error(err))
		}

		if setting.PushEnabled && s.pusher != nil {
			s.pusher.SendToUser(userID, "📊 Résumé quotidien",
				fmt.Sprintf("%d PRO • %d PERSO • %d en retard", pro, perso, len(overdue)))
		}
	}

	if setting.DeadlineReminder {
		for _, task := range overdue {
			inserted, err := s.notifications.CreateKeyed(
				userID,
				db.NotificationTypeDeadline,
				fmt.Sprintf("task-%d", task.ID),
				"⏰ Tâche en retard",
				fmt.Sprintf("La tâche %q est en retard.", task.Title),
			)
			if err != nil {
				s.log.Error("daily job: deadline insert failed",
					zap.Uint("user_id", userID),
					zap.Uint("task_id", task.ID),
					zap.Error(err))
				stats.FailedInserts++
				continue
			}
			if inserted {
				stats.Deadlines++
			}
		}
	}

	s.emitTomorrow(userID, tasks, now, stats)
}

// emitTomorrow 在存在次日到期任务时发出一条提醒，按日期幂等
func (s *SummaryService) emitTomorrow(userID uint, tasks []db.Task, now time.Time, stats *SummaryRunStats) {
	year, month, day := now.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, 1)

	var dueTomorrow int
	for _, task := range tasks {
		if task.Deadline == nil {
			continue
		}
		d := task.Deadline.In(now.Location())
		if !d.Before(start) && d.Before(end) {
			dueTomorrow++
		}
	}

	if dueTomorrow == 0 {
		return
	}

	inserted, err := s.notifications.CreateKeyed(
		userID,
		db.NotificationTypeTomorrow,
		"tomorrow-"+start.Format("2006-01-02"),
		"📅 Échéances demain",
		fmt.Sprintf("%d tâche(s) arrivent à échéance demain.", dueTomorrow),
	)
	if err != nil {
		s.log.Error("daily job: tomorrow insert failed", zap.Uint("user_id", userID), zap.Error(err))
		stats.FailedInserts++
		return
	}
	if inserted {
		stats.Tomorrows++
	}
}
