package model

import (
	"time"

	"github.com/google/uuid"
)

// Satu baris per tugas — keberadaan baris inilah yang mencegah
// penalti ganda saat tick berulang.
type TaskPenaltyModel struct {
	TaskPenaltyID       uuid.UUID `gorm:"column:task_penalty_id;type:uuid;default:gen_random_uuid();primaryKey" json:"task_penalty_id"`
	TaskPenaltyTaskID   uuid.UUID `gorm:"column:task_penalty_task_id;type:uuid;not null;uniqueIndex:uq_task_penalty_task" json:"task_penalty_task_id"`
	TaskPenaltyUserID   uuid.UUID `gorm:"column:task_penalty_user_id;type:uuid;not null;index" json:"task_penalty_user_id"`
	TaskPenaltyCourseID uuid.UUID `gorm:"column:task_penalty_course_id;type:uuid;not null;index" json:"task_penalty_course_id"`

	TaskPenaltyPercentage int    `gorm:"column:task_penalty_percentage;not null" json:"task_penalty_percentage"`
	TaskPenaltyReason     string `gorm:"column:task_penalty_reason;type:varchar(255);not null" json:"task_penalty_reason"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName override nama tabel
func (TaskPenaltyModel) TableName() string {
	return "task_penalties"
}
