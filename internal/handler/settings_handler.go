package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyppocampe/internal/service"
)

type notificationSettingsBody struct {
	DailySummary     bool `json:"daily_summary"`
	DeadlineReminder bool `json:"deadline_reminder"`
	PushEnabled      bool `json:"push_enabled"`
	SoundEnabled     bool `json:"sound_enabled"`
	SummaryHour      int  `json:"summary_hour"`
}

type preferenceBody struct {
	Mode  string `json:"mode"`
	Style string `json:"style"`
}

// GetNotificationSettings 返回通知设置，首次访问时创建默认行
func (a *API) GetNotificationSettings(c *gin.Context) {
	userID, _ := currentUserID(c)

	setting, err := a.settings.GetNotificationSettings(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取通知设置失败")
		return
	}

	c.JSON(http.StatusOK, setting)
}

// UpdateNotificationSettings 更新通知设置
func (a *API) UpdateNotificationSettings(c *gin.Context) {
	userID, _ := currentUserID(c)

	var body notificationSettingsBody
	if !bindJSON(c, &body, "设置数据格式不正确") {
		return
	}

	setting, err := a.settings.UpdateNotificationSettings(userID, service.NotificationSettingsInput{
		DailySummary:     body.DailySummary,
		DeadlineReminder: body.DeadlineReminder,
		PushEnabled:      body.PushEnabled,
		SoundEnabled:     body.SoundEnabled,
		SummaryHour:      body.SummaryHour,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "更新通知设置失败")
		return
	}

	c.JSON(http.StatusOK, setting)
}

// GetPreference 返回界面偏好，首次访问时创建默认行
func (a *API) GetPreference(c *gin.Context) {
	userID, _ := currentUserID(c)

	pref, err := a.settings.GetPreference(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取界面偏好失败")
		return
	}

	c.JSON(http.StatusOK, pref)
}

// UpdatePreference 更新界面偏好
func (a *API) UpdatePreference(c *gin.Context) {
	userID, _ := currentUserID(c)

	var body preferenceBody
	if !bindJSON(c, &body, "偏好数据格式不正确") {
		return
	}

	pref, err := a.settings.UpdatePreference(userID, service.PreferenceInput{
		Mode:  body.Mode,
		Style: body.Style,
	})
	if err != nil {
		if errors.Is(err, service.ErrPreferenceModeInvalid) || errors.Is(err, service.ErrPreferenceStyleInvalid) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "更新界面偏好失败")
		return
	}

	c.JSON(http.StatusOK, pref)
}
