package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseModel struct {
	CourseID    uuid.UUID `gorm:"column:course_id;type:uuid;default:gen_random_uuid();primaryKey" json:"course_id"`
	CourseTitle string    `gorm:"column:course_title;type:varchar(255);not null" json:"course_title"`
	CourseSlug  *string   `gorm:"column:course_slug;type:varchar(100);uniqueIndex" json:"course_slug,omitempty"`

	// draft | published | active | finished
	CourseStatus      string `gorm:"column:course_status;type:varchar(20);not null;default:'draft';index" json:"course_status"`
	CourseIsPublished bool   `gorm:"column:course_is_published;not null;default:false;index" json:"course_is_published"`
	// launched bersifat satu arah — tidak pernah kembali false
	CourseIsLaunched bool `gorm:"column:course_is_launched;not null;default:false;index" json:"course_is_launched"`

	CourseStartDate *time.Time `gorm:"column:course_start_date;type:date" json:"course_start_date,omitempty"`
	CourseEndDate   *time.Time `gorm:"column:course_end_date;type:date" json:"course_end_date,omitempty"`

	// Hari pertemuan (ISO weekday 1..7) untuk seeding jadwal harian
	CourseMeetingDays pq.Int64Array `gorm:"column:course_meeting_days;type:bigint[]" json:"course_meeting_days,omitempty"`

	// Flag trigger + kapasitas min/optimal/max per tier, contoh:
	// {"on_max_capacity":true,"on_optimal_before_start":false,"on_min_before_start":true,
	//  "capacity":{"participant":{"min":5,"optimal":10,"max":20},...}}
	CourseAutoLaunchSettings datatypes.JSONMap `gorm:"column:course_auto_launch_settings;type:jsonb" json:"course_auto_launch_settings,omitempty"`

	CourseLaunchedAt *time.Time `gorm:"column:course_launched_at" json:"course_launched_at,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

// TableName override nama tabel
func (CourseModel) TableName() string {
	return "courses"
}
