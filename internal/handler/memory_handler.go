package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyppocampe/internal/db"
	"github.com/hyppocampe/internal/service"
	"go.uber.org/zap"
)

type sectionCreateBody struct {
	Name           string   `json:"name"`
	SearchTemplate string   `json:"search_template"`
	Fields         []string `json:"fields"`
	AllowImage     bool     `json:"allow_image"`
}

type itemCreateBody struct {
	SectionID uint              `json:"section_id"`
	Title     string            `json:"title"`
	ImageURL  *string           `json:"image_url"`
	Rating    *int              `json:"rating"`
	Notes     string            `json:"notes"`
	ExtraData map[string]string `json:"extra_data"`
}

// itemView 在条目之上附加派生字段
type itemView struct {
	db.MemoryItem
	SearchURL string `json:"search_url"`
	NotesHTML string `json:"notes_html"`
}

// GetMemorySections 返回当前用户的全部分区
func (a *API) GetMemorySections(c *gin.Context) {
	userID, _ := currentUserID(c)

	sections, err := a.memories.ListSections(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取分区列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// CreateMemorySection 新建分区
func (a *API) CreateMemorySection(c *gin.Context) {
	userID, _ := currentUserID(c)

	var body sectionCreateBody
	if !bindJSON(c, &body, "分区数据格式不正确") {
		return
	}

	section, err := a.memories.CreateSection(userID, service.SectionInput{
		Name:           body.Name,
		SearchTemplate: body.SearchTemplate,
		FieldLabels:    body.Fields,
		AllowImage:     body.AllowImage,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSectionNameRequired):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSectionSlugTaken):
			respondError(c, http.StatusConflict, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "创建分区失败")
		}
		return
	}

	c.JSON(http.StatusCreated, section)
}

// GetMemorySection 按 slug 返回分区详情（字段、条目、检索链接与渲染后的备注）
func (a *API) GetMemorySection(c *gin.Context) {
	userID, _ := currentUserID(c)

	detail, err := a.memories.SectionBySlug(userID, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrSectionNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "获取分区失败")
		return
	}

	items := make([]itemView, 0, len(detail.Items))
	for _, item := range detail.Items {
		view := itemView{
			MemoryItem: item,
			SearchURL:  service.BuildSearchURL(detail.Section, item),
		}
		if html, err := service.RenderNotes(item.Notes); err == nil {
			view.NotesHTML = html
		} else {
			a.log.Warn("render notes failed", zap.Uint("item_id", item.ID), zap.Error(err))
		}
		items = append(items, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"section": detail.Section,
		"fields":  detail.Fields,
		"items":   items,
	})
}

// DeleteMemorySection 级联删除分区
func (a *API) DeleteMemorySection(c *gin.Context) {
	userID, _ := currentUserID(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.memories.DeleteSection(userID, id); err != nil {
		if errors.Is(err, service.ErrSectionNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "删除分区失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CreateMemoryItem 在分区下新建条目
func (a *API) CreateMemoryItem(c *gin.Context) {
	userID, _ := currentUserID(c)

	var body itemCreateBody
	if !bindJSON(c, &body, "条目数据格式不正确") {
		return
	}

	item, err := a.memories.CreateItem(userID, body.SectionID, service.ItemInput{
		Title:     body.Title,
		ImageURL:  body.ImageURL,
		Rating:    body.Rating,
		Notes:     body.Notes,
		ExtraData: body.ExtraData,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSectionNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrItemTitleRequired), errors.Is(err, service.ErrItemRatingInvalid):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "创建条目失败")
		}
		return
	}

	c.JSON(http.StatusCreated, item)
}

// DeleteMemoryItem 删除条目
func (a *API) DeleteMemoryItem(c *gin.Context) {
	userID, _ := currentUserID(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.memories.DeleteItem(userID, id); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "删除条目失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ResetMemoryData 清空当前用户的全部记忆数据
func (a *API) ResetMemoryData(c *gin.Context) {
	userID, _ := currentUserID(c)

	if err := a.memories.ResetMemory(userID); err != nil {
		respondError(c, http.StatusInternalServerError, "重置记忆数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
