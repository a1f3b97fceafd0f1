package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hyppocampe/internal/service"
)

type taskCreateBody struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Deadline string `json:"deadline"`
}

type taskStatusBody struct {
	Status string `json:"status"`
}

// GetTasks 返回当前用户的任务列表
// 支持 type 与 archived 查询参数过滤
func (a *API) GetTasks(c *gin.Context) {
	userID, _ := currentUserID(c)

	filter := service.TaskFilter{Type: strings.TrimSpace(c.Query("type"))}
	if raw := strings.TrimSpace(c.Query("archived")); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "archived 参数不合法")
			return
		}
		filter.Archived = &archived
	}

	tasks, err := a.tasks.List(userID, filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取任务列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// CreateTask 新建任务
func (a *API) CreateTask(c *gin.Context) {
	userID, _ := currentUserID(c)

	var body taskCreateBody
	if !bindJSON(c, &body, "任务数据格式不正确") {
		return
	}

	input := service.TaskInput{Title: body.Title, Type: body.Type}
	if strings.TrimSpace(body.Deadline) != "" {
		deadline, err := parseDeadline(body.Deadline)
		if err != nil {
			respondError(c, http.StatusBadRequest, "截止时间格式不正确")
			return
		}
		input.Deadline = &deadline
	}

	task, err := a.tasks.Create(userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskTitleRequired), errors.Is(err, service.ErrTaskTypeInvalid):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "创建任务失败")
		}
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTaskStatus 更新任务状态
func (a *API) UpdateTaskStatus(c *gin.Context) {
	userID, _ := currentUserID(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var body taskStatusBody
	if !bindJSON(c, &body, "状态数据格式不正确") {
		return
	}

	task, err := a.tasks.UpdateStatus(userID, id, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTaskStatusInvalid):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "更新任务状态失败")
		}
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask 删除任务
func (a *API) DeleteTask(c *gin.Context) {
	userID, _ := currentUserID(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.tasks.Delete(userID, id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "删除任务失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// parseDeadline 接受完整时间戳或纯日期两种格式
func parseDeadline(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", value, time.Local)
}
