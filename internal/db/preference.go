package db

import "gorm.io/gorm"

// 界面显示模式与风格的合法取值
const (
	PreferenceModeLight  = "light"
	PreferenceModeDark   = "dark"
	PreferenceModeSystem = "system"
)

var PreferenceStyles = []string{"apple", "startup", "colorful", "tech"}

// UserPreference 存储每个用户的界面显示偏好
type UserPreference struct {
	gorm.Model
	UserID uint   `gorm:"uniqueIndex;not null"`
	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Mode   string `gorm:"size:10;not null;default:system"`
	Style  string `gorm:"size:20;not null;default:apple"`
}
