package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskModel struct {
	TaskID         uuid.UUID  `gorm:"column:task_id;type:uuid;default:gen_random_uuid();primaryKey" json:"task_id"`
	TaskCourseID   uuid.UUID  `gorm:"column:task_course_id;type:uuid;not null;index" json:"task_course_id"`
	TaskUserID     uuid.UUID  `gorm:"column:task_user_id;type:uuid;not null;index" json:"task_user_id"`
	TaskScheduleID *uuid.UUID `gorm:"column:task_schedule_id;type:uuid;index" json:"task_schedule_id,omitempty"`

	// daily_reading | daily_quiz | daily_evaluation | daily_monitoring |
	// homework | exam | preparation | weekly_report | weekly_evaluation
	TaskType string `gorm:"column:task_type;type:varchar(30);not null;index" json:"task_type"`

	// pending | active | completed | expired | overdue (monoton, tidak pernah mundur)
	TaskStatus   string `gorm:"column:task_status;type:varchar(20);not null;default:'pending';index" json:"task_status"`
	TaskIsActive bool   `gorm:"column:task_is_active;not null;default:false;index" json:"task_is_active"`

	TaskReleasedAt *time.Time `gorm:"column:task_released_at" json:"task_released_at,omitempty"`
	TaskDueAt      *time.Time `gorm:"column:task_due_at;index" json:"task_due_at,omitempty"`

	TaskTitle    string  `gorm:"column:task_title;type:varchar(255);not null" json:"task_title"`
	TaskMaxScore float64 `gorm:"column:task_max_score;not null;default:100" json:"task_max_score"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

// TableName override nama tabel
func (TaskModel) TableName() string {
	return "tasks"
}
