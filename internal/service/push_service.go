package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/hyppocampe/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSubscriptionInvalid 在订阅字段缺失时返回
var ErrSubscriptionInvalid = errors.New("push subscription is incomplete")

type webpushSender func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// PushService 负责 Web Push 订阅管理与投递
// 投递按订阅逐个尝试，单个失败只记录日志，不中断其余订阅

type PushService struct {
	db         *gorm.DB
	log        *zap.Logger
	subscriber string
	publicKey  string
	privateKey string
	send       webpushSender
}

// PushPayload 是推送消息体
type PushPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewPushService 构造 PushService，VAPID 密钥缺失时投递会被跳过
func NewPushService(gdb *gorm.DB, log *zap.Logger, subscriber, publicKey, privateKey string) *PushService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PushService{
		db:         gdb,
		log:        log,
		subscriber: subscriber,
		publicKey:  publicKey,
		privateKey: privateKey,
		send:       webpush.SendNotification,
	}
}

// Register 登记或刷新一条设备订阅（同一 endpoint 覆盖旧密钥）
func (s *PushService) Register(userID uint, endpoint, p256dh, auth string) (*db.PushSubscription, error) {
	endpoint = strings.TrimSpace(endpoint)
	p256dh = strings.TrimSpace(p256dh)
	auth = strings.TrimSpace(auth)
	if endpoint == "" || p256dh == "" || auth == "" {
		return nil, ErrSubscriptionInvalid
	}

	sub := db.PushSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "updated_at"}),
	}).Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("register subscription: %w", err)
	}

	return &sub, nil
}

// Unregister 按 endpoint 移除订阅
func (s *PushService) Unregister(userID uint, endpoint string) error {
	if err := s.db.Unscoped().Where("user_id = ? AND endpoint = ?", userID, strings.TrimSpace(endpoint)).
		Delete(&db.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("unregister subscription: %w", err)
	}
	return nil
}

// SendToUser 向用户的每个已登记订阅投递一条推送
// 没有重试与退避；失效订阅不做清理
func (s *PushService) SendToUser(userID uint, title, message string) {
	if s.publicKey == "" || s.privateKey == "" {
		s.log.Debug("push skipped: VAPID keys not configured", zap.Uint("user_id", userID))
		return
	}

	var subs []db.PushSubscription
	if err := s.db.Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		s.log.Error("push: load subscriptions failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	payload, err := json.Marshal(PushPayload{Title: title, Message: message})
	if err != nil {
		s.log.Error("push: marshal payload failed", zap.Error(err))
		return
	}

	options := &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             30,
	}

	for _, sub := range subs {
		resp, err := s.send(payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}, options)
		if err != nil {
			s.log.Error("push: delivery failed",
				zap.Uint("user_id", userID),
				zap.String("endpoint", sub.Endpoint),
				zap.Error(err))
			continue
		}
		resp.Body.Close()
	}
}
