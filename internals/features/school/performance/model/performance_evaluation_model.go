package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Satu baris per (user, course, tanggal evaluasi). Unik pada triple tsb
// sehingga tick berulang di hari yang sama meng-update, bukan menduplikasi.
type PerformanceEvaluationModel struct {
	PerformanceEvaluationID       uuid.UUID `gorm:"column:performance_evaluation_id;type:uuid;default:gen_random_uuid();primaryKey" json:"performance_evaluation_id"`
	PerformanceEvaluationUserID   uuid.UUID `gorm:"column:performance_evaluation_user_id;type:uuid;not null;uniqueIndex:uq_performance_eval_user_course_date" json:"performance_evaluation_user_id"`
	PerformanceEvaluationCourseID uuid.UUID `gorm:"column:performance_evaluation_course_id;type:uuid;not null;uniqueIndex:uq_performance_eval_user_course_date" json:"performance_evaluation_course_id"`
	PerformanceEvaluationDate     time.Time `gorm:"column:performance_evaluation_date;type:date;not null;uniqueIndex:uq_performance_eval_user_course_date" json:"performance_evaluation_date"`

	PerformanceEvaluationCompletionRate float64 `gorm:"column:performance_evaluation_completion_rate;not null;default:0" json:"performance_evaluation_completion_rate"`
	PerformanceEvaluationQualityScore   float64 `gorm:"column:performance_evaluation_quality_score;not null;default:0" json:"performance_evaluation_quality_score"`
	PerformanceEvaluationTimelinessRate float64 `gorm:"column:performance_evaluation_timeliness_rate;not null;default:0" json:"performance_evaluation_timeliness_rate"`
	PerformanceEvaluationTotalScore     float64 `gorm:"column:performance_evaluation_total_score;not null;default:0" json:"performance_evaluation_total_score"`

	PerformanceEvaluationDetail datatypes.JSONMap `gorm:"column:performance_evaluation_detail;type:jsonb" json:"performance_evaluation_detail,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName override nama tabel
func (PerformanceEvaluationModel) TableName() string {
	return "performance_evaluations"
}
