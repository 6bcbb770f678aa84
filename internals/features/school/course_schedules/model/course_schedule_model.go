package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Satu baris per hari-kursus. Flag tasks_released hanya di-set true setelah
// SEMUA tugas yang terikat entri ini aktif — batas idempotensi Release Engine.
type CourseScheduleModel struct {
	CourseScheduleID       uuid.UUID `gorm:"column:course_schedule_id;type:uuid;default:gen_random_uuid();primaryKey" json:"course_schedule_id"`
	CourseScheduleCourseID uuid.UUID `gorm:"column:course_schedule_course_id;type:uuid;not null;index" json:"course_schedule_course_id"`

	CourseScheduleDate      time.Time `gorm:"column:course_schedule_date;type:date;not null;index" json:"course_schedule_date"`
	CourseScheduleDayNumber int       `gorm:"column:course_schedule_day_number;not null" json:"course_schedule_day_number"`

	// NULL bila hari itu tidak ada pertemuan — entri langsung eligible begitu tanggalnya tiba
	CourseScheduleMeetingStartAt *time.Time `gorm:"column:course_schedule_meeting_start_at" json:"course_schedule_meeting_start_at,omitempty"`
	CourseScheduleMeetingEndAt   *time.Time `gorm:"column:course_schedule_meeting_end_at" json:"course_schedule_meeting_end_at,omitempty"`

	CourseScheduleTasksReleased bool `gorm:"column:course_schedule_tasks_released;not null;default:false;index" json:"course_schedule_tasks_released"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

// TableName override nama tabel
func (CourseScheduleModel) TableName() string {
	return "course_schedules"
}
