package service

import (
	"testing"

	"github.com/hyppocampe/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSettingsTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.NotificationSetting{}, &db.UserPreference{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestSettingsServiceLazyDefaults(t *testing.T) {
	cleanup := setupSettingsTestDB(t)
	defer cleanup()

	svc := NewSettingsService(db.DB)

	setting, err := svc.GetNotificationSettings(1)
	if err != nil {
		t.Fatalf("GetNotificationSettings returned error: %v", err)
	}

	if !setting.DailySummary || !setting.DeadlineReminder || !setting.SoundEnabled {
		t.Fatalf("unexpected defaults: %+v", setting)
	}
	if setting.PushEnabled {
		t.Fatal("expected push to default to disabled")
	}
	if setting.SummaryHour != 8 {
		t.Fatalf("expected default summary hour 8, got %d", setting.SummaryHour)
	}

	// 第二次读取复用同一行
	again, err := svc.GetNotificationSettings(1)
	if err != nil {
		t.Fatalf("second GetNotificationSettings returned error: %v", err)
	}
	if again.ID != setting.ID {
		t.Fatalf("expected same row, got %d and %d", setting.ID, again.ID)
	}
}

func TestSettingsServiceUpdateClampsHour(t *testing.T) {
	cleanup := setupSettingsTestDB(t)
	defer cleanup()

	svc := NewSettingsService(db.DB)

	setting, err := svc.UpdateNotificationSettings(1, NotificationSettingsInput{
		DailySummary: true,
		SummaryHour:  42,
	})
	if err != nil {
		t.Fatalf("UpdateNotificationSettings returned error: %v", err)
	}
	if setting.SummaryHour != 23 {
		t.Fatalf("expected hour clamped to 23, got %d", setting.SummaryHour)
	}

	setting, err = svc.UpdateNotificationSettings(1, NotificationSettingsInput{SummaryHour: -3})
	if err != nil {
		t.Fatalf("UpdateNotificationSettings returned error: %v", err)
	}
	if setting.SummaryHour != 0 {
		t.Fatalf("expected hour clamped to 0, got %d", setting.SummaryHour)
	}
}

func TestSettingsServicePreferences(t *testing.T) {
	cleanup := setupSettingsTestDB(t)
	defer cleanup()

	svc := NewSettingsService(db.DB)

	pref, err := svc.GetPreference(1)
	if err != nil {
		t.Fatalf("GetPreference returned error: %v", err)
	}
	if pref.Mode != db.PreferenceModeSystem || pref.Style != "apple" {
		t.Fatalf("unexpected defaults: %+v", pref)
	}

	updated, err := svc.UpdatePreference(1, PreferenceInput{Mode: db.PreferenceModeDark, Style: "tech"})
	if err != nil {
		t.Fatalf("UpdatePreference returned error: %v", err)
	}
	if updated.Mode != db.PreferenceModeDark || updated.Style != "tech" {
		t.Fatalf("unexpected preference: %+v", updated)
	}

	if _, err := svc.UpdatePreference(1, PreferenceInput{Mode: "neon", Style: "tech"}); err != ErrPreferenceModeInvalid {
		t.Fatalf("expected ErrPreferenceModeInvalid, got %v", err)
	}
	if _, err := svc.UpdatePreference(1, PreferenceInput{Mode: "dark", Style: "brutalist"}); err != ErrPreferenceStyleInvalid {
		t.Fatalf("expected ErrPreferenceStyleInvalid, got %v", err)
	}
}
