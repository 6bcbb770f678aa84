package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskSubmissionModel struct {
	TaskSubmissionID     uuid.UUID `gorm:"column:task_submission_id;type:uuid;default:gen_random_uuid();primaryKey" json:"task_submission_id"`
	TaskSubmissionTaskID uuid.UUID `gorm:"column:task_submission_task_id;type:uuid;not null;index" json:"task_submission_task_id"`
	TaskSubmissionUserID uuid.UUID `gorm:"column:task_submission_user_id;type:uuid;not null;index" json:"task_submission_user_id"`

	// submitted | graded | completed — "completed" membebaskan tugas dari penalti
	TaskSubmissionStatus string   `gorm:"column:task_submission_status;type:varchar(20);not null;default:'submitted';index" json:"task_submission_status"`
	TaskSubmissionScore  *float64 `gorm:"column:task_submission_score" json:"task_submission_score,omitempty"`

	TaskSubmissionSubmittedAt time.Time `gorm:"column:task_submission_submitted_at;not null" json:"task_submission_submitted_at"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

// TableName override nama tabel
func (TaskSubmissionModel) TableName() string {
	return "task_submissions"
}
