package service

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/hyppocampe/internal/db"
	"github.com/hyppocampe/internal/realtime"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrSectionNotFound 在分区不存在或不属于当前用户时返回
	ErrSectionNotFound = errors.New("memory section not found")
	// ErrSectionNameRequired 在分区名称为空时返回
	ErrSectionNameRequired = errors.New("section name is required")
	// ErrSectionSlugTaken 在同一用户下 slug 冲突时返回
	ErrSectionSlugTaken = errors.New("section slug already taken")
	// ErrItemNotFound 在条目不存在或不属于当前用户时返回
	ErrItemNotFound = errors.New("memory item not found")
	// ErrItemTitleRequired 在条目标题为空时返回
	ErrItemTitleRequired = errors.New("item title is required")
	// ErrItemRatingInvalid 在评分超出 0-5 区间时返回
	ErrItemRatingInvalid = errors.New("item rating must be between 0 and 5")
)

var (
	slugStripPattern    = regexp.MustCompile(`[^\w\s-]`)
	slugSpacePattern    = regexp.MustCompile(`\s+`)
	fieldKeyPattern     = regexp.MustCompile(`\s+`)
	placeholderSyntax   = "${%s}"
	notesMarkdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	notesSanitizer = bluemonday.UGCPolicy()
)

// MemoryService 负责记忆分区、字段与条目的管理
// 分区删除为单事务级联（字段 -> 条目 -> 分区），不会留下孤儿行

type MemoryService struct {
	db  *gorm.DB
	hub *realtime.Hub
}

// SectionInput 定义创建分区时可配置字段
type SectionInput struct {
	Name           string
	SearchTemplate string
	FieldLabels    []string
	AllowImage     bool
}

// ItemInput 定义创建条目时可配置字段
type ItemInput struct {
	Title     string
	ImageURL  *string
	Rating    *int
	Notes     string
	ExtraData map[string]string
}

// SectionDetail 聚合分区详情页所需数据
type SectionDetail struct {
	Section db.MemorySection
	Fields  []db.MemorySectionField
	Items   []db.MemoryItem
}

// NewMemoryService 构造 MemoryService
func NewMemoryService(gdb *gorm.DB, hub *realtime.Hub) *MemoryService {
	return &MemoryService{db: gdb, hub: hub}
}

// Slugify 从分区名称派生 slug：小写、去首尾空白、剔除非 \w 字符、空白折叠为连字符
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugSpacePattern.ReplaceAllString(slug, "-")
	return slug
}

// FieldKey 从字段标签派生 extra_data 的键：小写、空白折叠为下划线
func FieldKey(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	return fieldKeyPattern.ReplaceAllString(key, "_")
}

// ListSections 返回用户的全部分区，按创建时间倒序
func (s *MemoryService) ListSections(userID uint) ([]db.MemorySection, error) {
	var sections []db.MemorySection
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// CreateSection 新建分区及其字段模式
// 同一用户下 slug 冲突直接拒绝；空检索模板回退为 ${title}
func (s *MemoryService) CreateSection(userID uint, input SectionInput) (*db.MemorySection, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrSectionNameRequired
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, ErrSectionNameRequired
	}

	template := strings.TrimSpace(input.SearchTemplate)
	if template == "" {
		template = "${title}"
	}

	section := db.MemorySection{
		UserID:         userID,
		Name:           name,
		Slug:           slug,
		SearchTemplate: template,
		AllowImage:     input.AllowImage,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.MemorySection{}).
			Where("user_id = ? AND slug = ?", userID, slug).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if count > 0 {
			return ErrSectionSlugTaken
		}

		if err := tx.Create(&section).Error; err != nil {
			return fmt.Errorf("create section: %w", err)
		}

		for _, label := range input.FieldLabels {
			trimmed := strings.TrimSpace(label)
			if trimmed == "" {
				continue
			}
			field := db.MemorySectionField{
				SectionID: section.ID,
				Label:     trimmed,
				FieldKey:  FieldKey(trimmed),
			}
			if err := tx.Create(&field).Error; err != nil {
				return fmt.Errorf("create section field: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishSection(userID, realtime.ActionInsert, section)
	return &section, nil
}

// SectionBySlug 按 slug 加载分区及其字段与条目
func (s *MemoryService) SectionBySlug(userID uint, slug string) (*SectionDetail, error) {
	var section db.MemorySection
	if err := s.db.Where("user_id = ? AND slug = ?", userID, slug).
		First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("find section: %w", err)
	}

	detail := SectionDetail{Section: section}

	if err := s.db.Where("section_id = ?", section.ID).
		Order("id ASC").
		Find(&detail.Fields).Error; err != nil {
		return nil, fmt.Errorf("list section fields: %w", err)
	}

	if err := s.db.Where("section_id = ? AND user_id = ?", section.ID, userID).
		Order("created_at DESC").
		Find(&detail.Items).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return &detail, nil
}

// DeleteSection 级联删除分区：字段、条目与分区行在同一事务内移除
func (s *MemoryService) DeleteSection(userID, id uint) error {
	var section db.MemorySection
	if err := s.db.Where("user_id = ?", userID).First(&section, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("find section: %w", err)
	}

	// 物理删除，保证同名分区之后可以重建（slug 受唯一索引约束）
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("section_id = ?", section.ID).
			Delete(&db.MemorySectionField{}).Error; err != nil {
			return fmt.Errorf("delete section fields: %w", err)
		}
		if err := tx.Unscoped().Where("section_id = ?", section.ID).
			Delete(&db.MemoryItem{}).Error; err != nil {
			return fmt.Errorf("delete section items: %w", err)
		}
		if err := tx.Unscoped().Delete(&section).Error; err != nil {
			return fmt.Errorf("delete section: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishSection(userID, realtime.ActionDelete, section)
	return nil
}

// CreateItem 在分区下新建条目
func (s *MemoryService) CreateItem(userID, sectionID uint, input ItemInput) (*db.MemoryItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrItemTitleRequired
	}

	if input.Rating != nil && (*input.Rating < 0 || *input.Rating > 5) {
		return nil, ErrItemRatingInvalid
	}

	var section db.MemorySection
	if err := s.db.Where("user_id = ?", userID).First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("find section: %w", err)
	}

	imageURL := input.ImageURL
	if !section.AllowImage {
		imageURL = nil
	}

	extra := datatypes.JSONMap{}
	for key, value := range input.ExtraData {
		extra[key] = value
	}

	item := db.MemoryItem{
		SectionID: section.ID,
		UserID:    userID,
		Title:     title,
		ImageURL:  imageURL,
		Rating:    input.Rating,
		Notes:     input.Notes,
		ExtraData: extra,
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.publishItem(userID, realtime.ActionInsert, item)
	return &item, nil
}

// DeleteItem 删除条目
func (s *MemoryService) DeleteItem(userID, id uint) error {
	var item db.MemoryItem
	if err := s.db.Where("user_id = ?", userID).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("find item: %w", err)
	}

	if err := s.db.Delete(&item).Error; err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.publishItem(userID, realtime.ActionDelete, item)
	return nil
}

// ResetMemory 清空用户的全部记忆数据（条目、字段、分区），单事务执行
func (s *MemoryService) ResetMemory(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).
			Delete(&db.MemoryItem{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := tx.Unscoped().Where("section_id IN (?)",
			tx.Model(&db.MemorySection{}).Select("id").Where("user_id = ?", userID),
		).Delete(&db.MemorySectionField{}).Error; err != nil {
			return fmt.Errorf("delete section fields: %w", err)
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).
			Delete(&db.MemorySection{}).Error; err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
		return nil
	})
}

// BuildSearchURL 将分区的检索模板实例化为搜索链接
// 每个 ${title} 与 ${field_key} 占位符全局替换；未知占位符保持原样
// 模板为空时返回空串
func BuildSearchURL(section db.MemorySection, item db.MemoryItem) string {
	template := section.SearchTemplate
	if strings.TrimSpace(template) == "" {
		return ""
	}

	query := strings.ReplaceAll(template, fmt.Sprintf(placeholderSyntax, "title"), item.Title)
	for key, value := range item.ExtraData {
		text, ok := value.(string)
		if !ok {
			text = fmt.Sprintf("%v", value)
		}
		query = strings.ReplaceAll(query, fmt.Sprintf(placeholderSyntax, key), text)
	}

	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

// RenderNotes 将条目备注从 Markdown 渲染为净化后的 HTML
func RenderNotes(notes string) (string, error) {
	if strings.TrimSpace(notes) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := notesMarkdownEngine.Convert([]byte(notes), &buf); err != nil {
		return "", fmt.Errorf("render notes: %w", err)
	}

	return notesSanitizer.Sanitize(buf.String()), nil
}

func (s *MemoryService) publishSection(userID uint, action string, section db.MemorySection) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(userID, realtime.Event{
		Table:   realtime.TableMemorySection,
		Action:  action,
		ID:      section.ID,
		Payload: section,
	})
}

func (s *MemoryService) publishItem(userID uint, action string, item db.MemoryItem) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(userID, realtime.Event{
		Table:   realtime.TableMemoryItems,
		Action:  action,
		ID:      item.ID,
		Payload: item,
	})
}
