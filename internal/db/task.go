package db

import (
	"time"

	"gorm.io/gorm"
)

// 任务状态流转：todo -> in_progress -> waiting -> done
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusWaiting    = "waiting"
	TaskStatusDone       = "done"
)

// 任务类型区分个人与工作
const (
	TaskTypePerso = "perso"
	TaskTypePro   = "pro"
)

// Task 定义了任务模型
// Deadline 可空；Archived 在状态流转为 done 时置为 true，之后不会自动回退
type Task struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null"`
	User     User   `gorm:"constraint:OnDelete:CASCADE"`
	Title    string `gorm:"not null"`
	Status   string `gorm:"size:20;not null;default:todo"`
	Type     string `gorm:"size:10;not null;default:perso"`
	Deadline *time.Time
	Archived bool `gorm:"not null;default:false"`
}

// ValidTaskStatus 校验状态取值
func ValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusWaiting, TaskStatusDone:
		return true
	}
	return false
}

// ValidTaskType 校验任务类型取值
func ValidTaskType(taskType string) bool {
	return taskType == TaskTypePerso || taskType == TaskTypePro
}
