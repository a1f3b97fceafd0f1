package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyppocampe/internal/service"
)

type subscriptionBody struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type pushTriggerBody struct {
	UserID  uint   `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// RegisterPushSubscription 登记当前用户的设备订阅
func (a *API) RegisterPushSubscription(c *gin.Context) {
	userID, _ := currentUserID(c)

	var body subscriptionBody
	if !bindJSON(c, &body, "订阅数据格式不正确") {
		return
	}

	sub, err := a.push.Register(userID, body.Endpoint, body.Keys.P256dh, body.Keys.Auth)
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionInvalid) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "登记订阅失败")
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// UnregisterPushSubscription 按 endpoint 移除当前用户的订阅
func (a *API) UnregisterPushSubscription(c *gin.Context) {
	userID, _ := currentUserID(c)

	var body subscriptionBody
	if !bindJSON(c, &body, "订阅数据格式不正确") {
		return
	}

	if err := a.push.Unregister(userID, body.Endpoint); err != nil {
		respondError(c, http.StatusInternalServerError, "移除订阅失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// TriggerPush 向指定用户投递一条推送，供平台侧调用
// 配置了共享密钥时要求 Bearer 认证
func (a *API) TriggerPush(c *gin.Context) {
	if !a.schedulerAuthorized(c) {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body pushTriggerBody
	if !bindJSON(c, &body, "推送数据格式不正确") {
		return
	}

	a.push.SendToUser(body.UserID, body.Title, body.Message)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
