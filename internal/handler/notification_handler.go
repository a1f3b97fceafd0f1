package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hyppocampe/internal/service"
)

type notificationCreateBody struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Link    string `json:"link"`
}

// GetNotifications 返回当前用户的通知列表与未读数（最新在前，不分页）
func (a *API) GetNotifications(c *gin.Context) {
	userID, _ := currentUserID(c)

	list, err := a.notifications.List(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取通知失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": list.Notifications,
		"unread_count":  list.UnreadCount,
	})
}

// MarkNotificationRead 标记通知为已读，重复调用结果不变
func (a *API) MarkNotificationRead(c *gin.Context) {
	userID, _ := currentUserID(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	notification, err := a.notifications.MarkRead(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "标记已读失败")
		return
	}

	c.JSON(http.StatusOK, notification)
}

// CreateNotification 新建 info 通知；用户开启推送时同时触发推送
func (a *API) CreateNotification(c *gin.Context) {
	userID, _ := currentUserID(c)

	var body notificationCreateBody
	if !bindJSON(c, &body, "通知数据格式不正确") {
		return
	}

	var link *string
	if trimmed := strings.TrimSpace(body.Link); trimmed != "" {
		link = &trimmed
	}

	notification, err := a.notifications.Create(userID, body.Title, body.Message, link)
	if err != nil {
		if errors.Is(err, service.ErrNotificationTitleRequired) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "创建通知失败")
		return
	}

	c.JSON(http.StatusCreated, notification)
}
