package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyppocampe/internal/db"
	"github.com/hyppocampe/internal/realtime"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotificationNotFound 在通知不存在或不属于当前用户时返回
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrNotificationTitleRequired 在通知标题为空时返回
	ErrNotificationTitleRequired = errors.New("notification title is required")
)

// 通知标题与正文只保留纯文本
var notificationTextPolicy = bluemonday.StrictPolicy()

// Pusher 抽象推送投递，便于在测试中替换
type Pusher interface {
	SendToUser(userID uint, title, message string)
}

// NotificationService 负责站内通知的读取与写入
// 带幂等键的写入通过 (user_id, type, ref_key) 唯一索引上的
// 条件插入完成，避免先查后插的竞态

type NotificationService struct {
	db     *gorm.DB
	hub    *realtime.Hub
	pusher Pusher
}

// NotificationList 聚合通知列表与未读数
type NotificationList struct {
	Notifications []db.Notification
	UnreadCount   int64
}

// NewNotificationService 构造 NotificationService
func NewNotificationService(gdb *gorm.DB, hub *realtime.Hub, pusher Pusher) *NotificationService {
	return &NotificationService{db: gdb, hub: hub, pusher: pusher}
}

// List 返回用户的全部通知（按创建时间倒序）及未读数
func (s *NotificationService) List(userID uint) (NotificationList, error) {
	var result NotificationList

	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&result.Notifications).Error; err != nil {
		return result, fmt.Errorf("list notifications: %w", err)
	}

	for _, n := range result.Notifications {
		if !n.Read {
			result.UnreadCount++
		}
	}

	return result, nil
}

// MarkRead 将通知标记为已读，重复标记不改变结果
func (s *NotificationService) MarkRead(userID, id uint) (*db.Notification, error) {
	var notification db.Notification
	if err := s.db.Where("user_id = ?", userID).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}

	if notification.Read {
		return &notification, nil
	}

	notification.Read = true
	if err := s.db.Save(&notification).Error; err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}

	s.publish(userID, realtime.ActionUpdate, notification)
	return &notification, nil
}

// Create 新建 info 类型通知；若用户开启了推送则同时触发推送投递
func (s *NotificationService) Create(userID uint, title, message string, link *string) (*db.Notification, error) {
	cleanTitle := strings.TrimSpace(notificationTextPolicy.Sanitize(title))
	if cleanTitle == "" {
		return nil, ErrNotificationTitleRequired
	}
	cleanMessage := strings.TrimSpace(notificationTextPolicy.Sanitize(message))

	notification := db.Notification{
		UserID:  userID,
		Type:    db.NotificationTypeInfo,
		Title:   cleanTitle,
		Message: cleanMessage,
		Link:    link,
		Read:    false,
	}

	if err := s.db.Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.publish(userID, realtime.ActionInsert, notification)

	if s.pusher != nil && s.pushEnabled(userID) {
		s.pusher.SendToUser(userID, cleanTitle, cleanMessage)
	}

	return &notification, nil
}

// CreateKeyed 以幂等键插入通知
// 依赖唯一索引上的 ON CONFLICT DO NOTHING，返回是否真正插入了新行
func (s *NotificationService) CreateKeyed(userID uint, typ, refKey, title, message string) (bool, error) {
	key := strings.TrimSpace(refKey)
	if key == "" {
		return false, errors.New("ref key is required")
	}

	notification := db.Notification{
		UserID:  userID,
		Type:    typ,
		RefKey:  &key,
		Title:   title,
		Message: message,
		Read:    false,
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}, {Name: "ref_key"}},
		DoNothing: true,
	}).Create(&notification)
	if result.Error != nil {
		return false, fmt.Errorf("create keyed notification: %w", result.Error)
	}

	inserted := result.RowsAffected > 0
	if inserted {
		s.publish(userID, realtime.ActionInsert, notification)
	}

	return inserted, nil
}

func (s *NotificationService) pushEnabled(userID uint) bool {
	var setting db.NotificationSetting
	if err := s.db.Where("user_id = ?", userID).First(&setting).Error; err != nil {
		return false
	}
	return setting.PushEnabled
}

func (s *NotificationService) publish(userID uint, action string, notification db.Notification) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(userID, realtime.Event{
		Table:   realtime.TableNotifications,
		Action:  action,
		ID:      notification.ID,
		Payload: notification,
	})
}
