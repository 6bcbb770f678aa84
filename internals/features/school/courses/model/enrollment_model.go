package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EnrollmentModel struct {
	EnrollmentID       uuid.UUID `gorm:"column:enrollment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"enrollment_id"`
	EnrollmentUserID   uuid.UUID `gorm:"column:enrollment_user_id;type:uuid;not null;uniqueIndex:uq_enrollment_user_course" json:"enrollment_user_id"`
	EnrollmentCourseID uuid.UUID `gorm:"column:enrollment_course_id;type:uuid;not null;uniqueIndex:uq_enrollment_user_course" json:"enrollment_course_id"`

	// participant | mentor | supervisor (hirarki peserta 3 tingkat)
	EnrollmentRoleTier string `gorm:"column:enrollment_role_tier;type:varchar(20);not null;default:'participant';index" json:"enrollment_role_tier"`

	// waiting_start | active | finished | dropped
	EnrollmentStatus string `gorm:"column:enrollment_status;type:varchar(20);not null;default:'waiting_start';index" json:"enrollment_status"`

	// Blob nilai denormalisasi: total penalti berjalan (merge oleh Expiry Engine)
	// dan payload performa lengkap (overwrite oleh Performance Evaluator)
	EnrollmentGrade datatypes.JSONMap `gorm:"column:enrollment_grade;type:jsonb" json:"enrollment_grade,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

// TableName override nama tabel
func (EnrollmentModel) TableName() string {
	return "enrollments"
}
