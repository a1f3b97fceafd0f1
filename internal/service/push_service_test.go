package service

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/hyppocampe/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPushTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.PushSubscription{}); err != nil {
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

func newTestPushService() *PushService {
	return NewPushService(db.DB, nil, "mailto:test@example.com", "pub", "priv")
}

func TestPushServiceRegisterUpserts(t *testing.T) {
	cleanup := setupPushTestDB(t)
	defer cleanup()

	svc := newTestPushService()

	if _, err := svc.Register(1, "https://push.example/a", "key1", "auth1"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// 同一 endpoint 重复登记只刷新密钥
	if _, err := svc.Register(1, "https://push.example/a", "key2", "auth2"); err != nil {
		t.Fatalf("second Register returned error: %v", err)
	}

	var subs []db.PushSubscription
	if err := db.DB.Where("user_id = ?", 1).Find(&subs).Error; err != nil {
		t.Fatalf("failed to load subscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
	if subs[0].P256dh != "key2" || subs[0].Auth != "auth2" {
		t.Fatalf("expected keys to be refreshed, got %+v", subs[0])
	}

	if _, err := svc.Register(1, "", "k", "a"); err != ErrSubscriptionInvalid {
		t.Fatalf("expected ErrSubscriptionInvalid, got %v", err)
	}
}

func TestPushServiceUnregister(t *testing.T) {
	cleanup := setupPushTestDB(t)
	defer cleanup()

	svc := newTestPushService()

	if _, err := svc.Register(1, "https://push.example/a", "k", "a"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := svc.Unregister(1, "https://push.example/a"); err != nil {
		t.Fatalf("Unregister returned error: %v", err)
	}

	var count int64
	db.DB.Model(&db.PushSubscription{}).Where("user_id = ?", 1).Count(&count)
	if count != 0 {
		t.Fatalf("expected no subscriptions, got %d", count)
	}
}

func TestPushServiceSendToUserContinuesOnFailure(t *testing.T) {
	cleanup := setupPushTestDB(t)
	defer cleanup()

	svc := newTestPushService()

	if _, err := svc.Register(1, "https://push.example/a", "k", "a"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := svc.Register(1, "https://push.example/b", "k", "a"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	var attempts []string
	svc.send = func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		attempts = append(attempts, s.Endpoint)
		if strings.HasSuffix(s.Endpoint, "/a") {
			return nil, errors.New("endpoint gone")
		}
		return &http.Response{Body: io.NopCloser(strings.NewReader(""))}, nil
	}

	svc.SendToUser(1, "Titre", "Message")

	// 单个订阅失败不中断其余投递
	if len(attempts) != 2 {
		t.Fatalf("expected 2 delivery attempts, got %d", len(attempts))
	}
}

func TestPushServiceSendSkippedWithoutKeys(t *testing.T) {
	cleanup := setupPushTestDB(t)
	defer cleanup()

	svc := NewPushService(db.DB, nil, "mailto:test@example.com", "", "")

	called := false
	svc.send = func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		called = true
		return nil, nil
	}

	svc.SendToUser(1, "Titre", "Message")
	if called {
		t.Fatal("expected delivery to be skipped without VAPID keys")
	}
}
