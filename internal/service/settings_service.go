package service

import (
	"errors"
	"fmt"

	"github.com/hyppocampe/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrPreferenceModeInvalid 在显示模式取值非法时返回
	ErrPreferenceModeInvalid = errors.New("invalid preference mode")
	// ErrPreferenceStyleInvalid 在界面风格取值非法时返回
	ErrPreferenceStyleInvalid = errors.New("invalid preference style")
)

// SettingsService 管理通知设置与界面偏好
// 通知设置在首次读取时按默认值惰性创建

type SettingsService struct {
	db *gorm.DB
}

// NotificationSettingsInput 用于更新通知设置
type NotificationSettingsInput struct {
	DailySummary     bool
	DeadlineReminder bool
	PushEnabled      bool
	SoundEnabled     bool
	SummaryHour      int
}

// PreferenceInput 用于更新界面偏好
type PreferenceInput struct {
	Mode  string
	Style string
}

// NewSettingsService 构造 SettingsService
func NewSettingsService(gdb *gorm.DB) *SettingsService {
	return &SettingsService{db: gdb}
}

// GetNotificationSettings 读取用户的通知设置，不存在时创建默认行
func (s *SettingsService) GetNotificationSettings(userID uint) (*db.NotificationSetting, error) {
	var setting db.NotificationSetting
	err := s.db.Where("user_id = ?", userID).First(&setting).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get notification settings: %w", err)
	}

	setting = db.NotificationSetting{
		UserID:           userID,
		DailySummary:     true,
		DeadlineReminder: true,
		PushEnabled:      false,
		SoundEnabled:     true,
		SummaryHour:      8,
	}
	if err := s.db.Create(&setting).Error; err != nil {
		return nil, fmt.Errorf("create default notification settings: %w", err)
	}

	return &setting, nil
}

// UpdateNotificationSettings 更新通知设置，SummaryHour 被收敛到 0-23
func (s *SettingsService) UpdateNotificationSettings(userID uint, input NotificationSettingsInput) (*db.NotificationSetting, error) {
	setting, err := s.GetNotificationSettings(userID)
	if err != nil {
		return nil, err
	}

	hour := input.SummaryHour
	if hour < 0 {
		hour = 0
	}
	if hour > 23 {
		hour = 23
	}

	setting.DailySummary = input.DailySummary
	setting.DeadlineReminder = input.DeadlineReminder
	setting.PushEnabled = input.PushEnabled
	setting.SoundEnabled = input.SoundEnabled
	setting.SummaryHour = hour

	if err := s.db.Save(setting).Error; err != nil {
		return nil, fmt.Errorf("update notification settings: %w", err)
	}

	return setting, nil
}

// GetPreference 读取用户的界面偏好，不存在时创建默认行
func (s *SettingsService) GetPreference(userID uint) (*db.UserPreference, error) {
	var pref db.UserPreference
	err := s.db.Where("user_id = ?", userID).First(&pref).Error
	if err == nil {
		return &pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get preference: %w", err)
	}

	pref = db.UserPreference{
		UserID: userID,
		Mode:   db.PreferenceModeSystem,
		Style:  "apple",
	}
	if err := s.db.Create(&pref).Error; err != nil {
		return nil, fmt.Errorf("create default preference: %w", err)
	}

	return &pref, nil
}

// UpdatePreference 更新界面偏好
func (s *SettingsService) UpdatePreference(userID uint, input PreferenceInput) (*db.UserPreference, error) {
	if !validPreferenceMode(input.Mode) {
		return nil, ErrPreferenceModeInvalid
	}
	if !validPreferenceStyle(input.Style) {
		return nil, ErrPreferenceStyleInvalid
	}

	pref, err := s.GetPreference(userID)
	if err != nil {
		return nil, err
	}

	pref.Mode = input.Mode
	pref.Style = input.Style

	if err := s.db.Save(pref).Error; err != nil {
		return nil, fmt.Errorf("update preference: %w", err)
	}

	return pref, nil
}

func validPreferenceMode(mode string) bool {
	switch mode {
	case db.PreferenceModeLight, db.PreferenceModeDark, db.PreferenceModeSystem:
		return true
	}
	return false
}

func validPreferenceStyle(style string) bool {
	for _, s := range db.PreferenceStyles {
		if s == style {
			return true
		}
	}
	return false
}
