package db

import (
	"time"

	"gorm.io/gorm"
)

// 通知类型
const (
	NotificationTypeSummary  = "summary"
	NotificationTypeDeadline = "deadline"
	NotificationTypeTomorrow = "tomorrow"
	NotificationTypeInfo     = "info"
)

// Notification 定义了站内通知模型
// RefKey 为幂等键，user_id + type + ref_key 采用唯一索引，
// 保证定时任务重复执行时同一键的通知至多生成一条
type Notification struct {
	gorm.Model
	UserID  uint    `gorm:"index;index:idx_notifications_dedup,unique;not null"`
	User    User    `gorm:"constraint:OnDelete:CASCADE"`
	Type    string  `gorm:"size:20;index:idx_notifications_dedup,unique;not null;default:info"`
	RefKey  *string `gorm:"index:idx_notifications_dedup,unique"`
	Title   string  `gorm:"not null"`
	Message string  `gorm:"type:text"`
	Link    *string
	Read    bool `gorm:"not null;default:false"`
}

// NotificationSetting 每个用户一行，首次访问设置页时惰性创建
type NotificationSetting struct {
	gorm.Model
	UserID           uint `gorm:"uniqueIndex;not null"`
	User             User `gorm:"constraint:OnDelete:CASCADE"`
	DailySummary     bool `gorm:"not null;default:true"`
	DeadlineReminder bool `gorm:"not null;default:true"`
	PushEnabled      bool `gorm:"not null;default:false"`
	SoundEnabled     bool `gorm:"not null;default:true"`
	SummaryHour      int  `gorm:"not null;default:8"`
}

// DailySummaryLog 记录每日摘要的发送历史，仅作审计用途
// 去重本身由 Notification 的唯一索引保证
type DailySummaryLog struct {
	gorm.Model
	UserID uint      `gorm:"index;not null"`
	SentAt time.Time `gorm:"not null"`
}
