package db

import "gorm.io/gorm"

// PushSubscription 记录浏览器/设备的 Web Push 订阅
// 同一用户的同一 endpoint 只保留一条记录
type PushSubscription struct {
	gorm.Model
	UserID   uint   `gorm:"index;index:idx_push_subs_user_endpoint,unique;not null"`
	User     User   `gorm:"constraint:OnDelete:CASCADE"`
	Endpoint string `gorm:"index:idx_push_subs_user_endpoint,unique;not null"`
	P256dh   string `gorm:"not null"`
	Auth     string `gorm:"not null"`
}
