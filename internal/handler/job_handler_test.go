package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hyppocampe/internal/db"
)

func runDailySummary(api *API, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/daily-summary", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	api.TriggerDailySummary(c)
	return w
}

func TestTriggerDailySummaryRequiresCronHeader(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	w := runDailySummary(api, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without X-Cron, got %d", w.Code)
	}

	w = runDailySummary(api, map[string]string{"X-Cron": "1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 with X-Cron, got %d", w.Code)
	}
}

func TestTriggerDailySummaryBearerSecret(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()
	api.cronSecret = "topsecret"

	w := runDailySummary(api, map[string]string{"X-Cron": "1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without bearer token, got %d", w.Code)
	}

	w = runDailySummary(api, map[string]string{"X-Cron": "1", "Authorization": "Bearer mauvais"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with wrong token, got %d", w.Code)
	}

	w = runDailySummary(api, map[string]string{"X-Cron": "1", "Authorization": "Bearer topsecret"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 with correct token, got %d", w.Code)
	}
}

func TestTriggerDailySummaryInsertsSummary(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	hour := time.Now().Hour()
	if err := db.DB.Create(&db.NotificationSetting{
		UserID:       1,
		DailySummary: true,
		SummaryHour:  hour,
	}).Error; err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}
	if err := db.DB.Create(&db.Task{UserID: 1, Title: "Tâche", Status: db.TaskStatusTodo, Type: db.TaskTypePro}).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	w := runDailySummary(api, map[string]string{"X-Cron": "1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["ok"] != true {
		t.Fatalf("expected ok response, got %v", resp)
	}

	var count int64
	db.DB.Model(&db.Notification{}).Where("user_id = ? AND type = ?", 1, db.NotificationTypeSummary).Count(&count)
	if count != 1 {
		t.Fatalf("expected one summary notification, got %d", count)
	}
}

func TestDebugNotificationInsertsDirectly(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/debug/notification", nil)
	c, w := authedContext(t, 1, req)
	api.DebugNotification(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var created db.Notification
	if err := db.DB.First(&created).Error; err != nil {
		t.Fatalf("failed to load notification: %v", err)
	}
	if created.Title != "🔥 Test direct" {
		t.Fatalf("unexpected title: %s", created.Title)
	}
}
