package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyppocampe/internal/db"
	"github.com/hyppocampe/internal/realtime"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound 在指定任务不存在或不属于当前用户时返回
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskTitleRequired 在任务标题为空时返回
	ErrTaskTitleRequired = errors.New("task title is required")
	// ErrTaskStatusInvalid 在状态取值非法时返回
	ErrTaskStatusInvalid = errors.New("invalid task status")
	// ErrTaskTypeInvalid 在任务类型取值非法时返回
	ErrTaskTypeInvalid = errors.New("invalid task type")
)

// TaskService 负责 Task 数据的增删改查
// 写入成功后通过 Hub 向当前用户广播行级变更事件

type TaskService struct {
	db  *gorm.DB
	hub *realtime.Hub
}

// TaskFilter 描述任务列表过滤条件
type TaskFilter struct {
	Type     string
	Archived *bool
}

// TaskInput 定义创建任务时可配置字段
type TaskInput struct {
	Title    string
	Type     string
	Deadline *time.Time
}

// NewTaskService 构造 TaskService
func NewTaskService(gdb *gorm.DB, hub *realtime.Hub) *TaskService {
	return &TaskService{db: gdb, hub: hub}
}

// List 返回用户的任务集合，按创建时间倒序
func (s *TaskService) List(userID uint, filter TaskFilter) ([]db.Task, error) {
	var tasks []db.Task

	query := s.db.Model(&db.Task{}).Where("user_id = ?", userID)

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Archived != nil {
		query = query.Where("archived = ?", *filter.Archived)
	}

	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// Create 新建任务，初始状态固定为 todo 且未归档
func (s *TaskService) Create(userID uint, input TaskInput) (*db.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleRequired
	}

	taskType := strings.TrimSpace(input.Type)
	if taskType == "" {
		taskType = db.TaskTypePerso
	}
	if !db.ValidTaskType(taskType) {
		return nil, ErrTaskTypeInvalid
	}

	task := db.Task{
		UserID:   userID,
		Title:    title,
		Status:   db.TaskStatusTodo,
		Type:     taskType,
		Deadline: input.Deadline,
		Archived: false,
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.publish(userID, realtime.ActionInsert, task)
	return &task, nil
}

// UpdateStatus 更新任务状态
// 状态变为 done 时强制归档；其他状态不改动 archived 标记
func (s *TaskService) UpdateStatus(userID, id uint, status string) (*db.Task, error) {
	if !db.ValidTaskStatus(status) {
		return nil, ErrTaskStatusInvalid
	}

	var task db.Task
	if err := s.db.Where("user_id = ?", userID).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	task.Status = status
	if status == db.TaskStatusDone {
		// done 状态强制归档；归档标记不会随其他状态回退
		task.Archived = true
	}

	if err := s.db.Save(&task).Error; err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	s.publish(userID, realtime.ActionUpdate, task)
	return &task, nil
}

// Delete 删除任务
func (s *TaskService) Delete(userID, id uint) error {
	var task db.Task
	if err := s.db.Where("user_id = ?", userID).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("find task: %w", err)
	}

	if err := s.db.Delete(&task).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.publish(userID, realtime.ActionDelete, task)
	return nil
}

func (s *TaskService) publish(userID uint, action string, task db.Task) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(userID, realtime.Event{
		Table:   realtime.TableTasks,
		Action:  action,
		ID:      task.ID,
		Payload: task,
	})
}
