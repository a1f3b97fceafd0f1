package db

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MemorySection 定义了记忆分区模型
// Slug 由名称派生，同一用户内唯一；SearchTemplate 支持 ${title} 与字段占位符
type MemorySection struct {
	gorm.Model
	UserID         uint   `gorm:"index;index:idx_memory_sections_user_slug,unique;not null"`
	User           User   `gorm:"constraint:OnDelete:CASCADE"`
	Name           string `gorm:"not null"`
	Slug           string `gorm:"index:idx_memory_sections_user_slug,unique;not null"`
	SearchTemplate string
	AllowImage     bool `gorm:"not null;default:true"`
}

// MemorySectionField 描述分区的自定义字段模式
// FieldKey 用于索引 MemoryItem.ExtraData
type MemorySectionField struct {
	gorm.Model
	SectionID uint          `gorm:"index;not null"`
	Section   MemorySection `gorm:"constraint:OnDelete:CASCADE"`
	Label     string        `gorm:"not null"`
	FieldKey  string        `gorm:"not null"`
}

// MemoryItem 定义了记忆条目模型
// ExtraData 按 field_key 存储自定义字段值；Notes 为可选的 Markdown 备注
type MemoryItem struct {
	gorm.Model
	SectionID uint          `gorm:"index;not null"`
	Section   MemorySection `gorm:"constraint:OnDelete:CASCADE"`
	UserID    uint          `gorm:"index;not null"`
	Title     string        `gorm:"not null"`
	ImageURL  *string
	Rating    *int
	Notes     string            `gorm:"type:text"`
	ExtraData datatypes.JSONMap `gorm:"type:text"`
}
