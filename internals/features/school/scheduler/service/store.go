package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kajianku_backend/internals/constants"
	schedModel "kajianku_backend/internals/features/school/course_schedules/model"
	courseModel "kajianku_backend/internals/features/school/courses/model"
	notifModel "kajianku_backend/internals/features/school/notifications/model"
	notifService "kajianku_backend/internals/features/school/notifications/service"
	perfModel "kajianku_backend/internals/features/school/performance/model"
	taskModel "kajianku_backend/internals/features/school/tasks/model"
)

// Hasil rutin kalkulasi performa sisi-DB (fn_calculate_user_performance)
type PerformanceResult struct {
	CompletionRate float64           `json:"completion_rate"`
	QualityScore   float64           `json:"quality_score"`
	TimelinessRate float64           `json:"timeliness_rate"`
	TotalScore     float64           `json:"total_score"`
	Detail         datatypes.JSONMap `json:"detail"`
}

// SchedulerStore adalah gateway tunggal semua engine ke store relasional.
// Satu kontrak SQL kanonik per operasi — driver cron, trigger HTTP, dan CLI
// semuanya memakai implementasi yang sama.
type SchedulerStore interface {
	// Transaksi: fn dijalankan di atas store yang terikat tx; error → rollback.
	WithTx(ctx context.Context, fn func(tx SchedulerStore) error) error

	// ── Task Release Engine ──
	DueScheduleEntries(ctx context.Context, now time.Time) ([]schedModel.CourseScheduleModel, error)
	InactiveTasksForEntry(ctx context.Context, entryID uuid.UUID) ([]taskModel.TaskModel, error)
	ActivateTasks(ctx context.Context, taskIDs []uuid.UUID, releasedAt time.Time) error
	MarkEntryReleased(ctx context.Context, entryID uuid.UUID) (bool, error)

	// ── Expiry & Penalty Engine ──
	OverdueTaskCandidates(ctx context.Context, taskTypes []string, now time.Time) ([]taskModel.TaskModel, error)
	HasPenalty(ctx context.Context, taskID uuid.UUID) (bool, error)
	InsertPenalty(ctx context.Context, penalty *taskModel.TaskPenaltyModel) error
	MergePenaltyIntoGrade(ctx context.Context, userID, courseID uuid.UUID, percentage int) error
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, fromStatus, toStatus string) error

	// ── Performance Evaluator ──
	ActiveEnrollmentsInLaunchedCourses(ctx context.Context) ([]courseModel.EnrollmentModel, error)
	CalculateUserPerformance(ctx context.Context, userID, courseID uuid.UUID) (*PerformanceResult, error)
	UpsertPerformanceEvaluation(ctx context.Context, eval *perfModel.PerformanceEvaluationModel) error
	OverwriteEnrollmentGrade(ctx context.Context, userID, courseID uuid.UUID, grade datatypes.JSONMap) error

	// ── Auto-Launch Monitor ──
	LaunchCandidates(ctx context.Context, now time.Time) ([]courseModel.CourseModel, error)
	ShouldAutoLaunch(ctx context.Context, courseID uuid.UUID) (bool, error)
	MarkCourseLaunched(ctx context.Context, courseID uuid.UUID, launchedAt time.Time) (bool, error)
	ActivateWaitingEnrollments(ctx context.Context, courseID uuid.UUID) (int64, error)
	ActiveEnrollmentUserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	GenerateCourseTasks(ctx context.Context, courseID uuid.UUID) (int, error)

	// ── Notification Sink (append-only, dipakai semua engine) ──
	CreateNotifications(ctx context.Context, notifs []notifModel.NotificationModel) error
}

// Store adalah implementasi GORM/PostgreSQL dari SchedulerStore.
type Store struct {
	db    *gorm.DB
	notif *notifService.NotificationService
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		notif: notifService.NewNotificationService(db),
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx SchedulerStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

/* =========================
   Task Release Engine
========================= */

// Entri jadwal yang jendela pertemuannya sudah lewat (atau tanpa jam pertemuan)
// dan tugasnya belum dirilis. Entri tanggal lampau yang belum dirilis tetap
// ikut — itulah mekanisme retry antar-tick.
func (s *Store) DueScheduleEntries(ctx context.Context, now time.Time) ([]schedModel.CourseScheduleModel, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var entries []schedModel.CourseScheduleModel
	err := s.db.WithContext(ctx).
		Where("course_schedule_tasks_released = FALSE").
		Where("course_schedule_date <= ?", today).
		Where("course_schedule_meeting_end_at IS NULL OR course_schedule_meeting_end_at <= ?", now).
		Order("course_schedule_date ASC").
		Find(&entries).Error
	return entries, err
}

func (s *Store) InactiveTasksForEntry(ctx context.Context, entryID uuid.UUID) ([]taskModel.TaskModel, error) {
	var tasks []taskModel.TaskModel
	err := s.db.WithContext(ctx).
		Where("task_schedule_id = ?", entryID).
		Where("task_is_active = FALSE").
		Where("task_status = ?", constants.TaskStatusPending).
		Find(&tasks).Error
	return tasks, err
}

// Guard task_is_active = FALSE menjaga aktivasi tetap sekali-saja walau
// dua tick sempat membaca entri yang sama.
func (s *Store) ActivateTasks(ctx context.Context, taskIDs []uuid.UUID, releasedAt time.Time) error {
	if len(taskIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&taskModel.TaskModel{}).
		Where("task_id IN ?", taskIDs).
		Where("task_is_active = FALSE").
		Updates(map[string]interface{}{
			"task_is_active":   true,
			"task_status":      constants.TaskStatusActive,
			"task_released_at": releasedAt,
		}).Error
}

func (s *Store) MarkEntryReleased(ctx context.Context, entryID uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&schedModel.CourseScheduleModel{}).
		Where("course_schedule_id = ?", entryID).
		Where("course_schedule_tasks_released = FALSE").
		Update("course_schedule_tasks_released", true)
	return res.RowsAffected > 0, res.Error
}

/* =========================
   Expiry & Penalty Engine
========================= */

// Kandidat: aktif, lewat jatuh tempo, tanpa submission "completed",
// dan tanpa baris penalti (guard idempotensi).
func (s *Store) OverdueTaskCandidates(ctx context.Context, taskTypes []string, now time.Time) ([]taskModel.TaskModel, error) {
	q := `
SELECT t.*
FROM tasks t
WHERE t.task_type IN ?
  AND t.task_status = 'active'
  AND t.task_due_at IS NOT NULL
  AND t.task_due_at < ?
  AND t.deleted_at IS NULL
  AND NOT EXISTS (
        SELECT 1 FROM task_submissions s
        WHERE s.task_submission_task_id = t.task_id
          AND s.task_submission_status = 'completed'
          AND s.deleted_at IS NULL
  )
  AND NOT EXISTS (
        SELECT 1 FROM task_penalties p
        WHERE p.task_penalty_task_id = t.task_id
  )
ORDER BY t.task_due_at ASC`

	var tasks []taskModel.TaskModel
	err := s.db.WithContext(ctx).Raw(q, taskTypes, now).Scan(&tasks).Error
	return tasks, err
}

func (s *Store) HasPenalty(ctx context.Context, taskID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&taskModel.TaskPenaltyModel{}).
		Where("task_penalty_task_id = ?", taskID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) InsertPenalty(ctx context.Context, penalty *taskModel.TaskPenaltyModel) error {
	return s.db.WithContext(ctx).Create(penalty).Error
}

// Merge total penalti berjalan ke blob nilai enrollment (jsonb ||)
func (s *Store) MergePenaltyIntoGrade(ctx context.Context, userID, courseID uuid.UUID, percentage int) error {
	q := `
UPDATE enrollments
SET enrollment_grade = COALESCE(enrollment_grade, '{}'::jsonb) || jsonb_build_object(
        'penalty_total', COALESCE((enrollment_grade->>'penalty_total')::numeric, 0) + ?,
        'penalty_count', COALESCE((enrollment_grade->>'penalty_count')::int, 0) + 1
    ),
    updated_at = NOW()
WHERE enrollment_user_id = ?
  AND enrollment_course_id = ?
  AND deleted_at IS NULL`
	return s.db.WithContext(ctx).Exec(q, percentage, userID, courseID).Error
}

// Guard fromStatus menjaga transisi status tetap monoton.
func (s *Store) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, fromStatus, toStatus string) error {
	return s.db.WithContext(ctx).
		Model(&taskModel.TaskModel{}).
		Where("task_id = ?", taskID).
		Where("task_status = ?", fromStatus).
		Update("task_status", toStatus).Error
}

/* =========================
   Performance Evaluator
========================= */

func (s *Store) ActiveEnrollmentsInLaunchedCourses(ctx context.Context) ([]courseModel.EnrollmentModel, error) {
	q := `
SELECT e.*
FROM enrollments e
JOIN courses c ON c.course_id = e.enrollment_course_id
WHERE e.enrollment_status = 'active'
  AND e.deleted_at IS NULL
  AND c.course_is_launched = TRUE
  AND c.deleted_at IS NULL
ORDER BY e.enrollment_course_id, e.enrollment_user_id`

	var enrollments []courseModel.EnrollmentModel
	err := s.db.WithContext(ctx).Raw(q).Scan(&enrollments).Error
	return enrollments, err
}

// Rutin agregasi sisi-DB; core memperlakukannya sebagai black box.
func (s *Store) CalculateUserPerformance(ctx context.Context, userID, courseID uuid.UUID) (*PerformanceResult, error) {
	var raw string
	err := s.db.WithContext(ctx).
		Raw("SELECT fn_calculate_user_performance(?, ?)::text", userID, courseID).
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}
	if raw == "" || raw == "null" {
		return nil, fmt.Errorf("fn_calculate_user_performance mengembalikan payload kosong untuk user=%s course=%s", userID, courseID)
	}

	var result PerformanceResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("payload performa tidak valid: %w", err)
	}
	return &result, nil
}

// Upsert pada (user, course, tanggal evaluasi) — tick berulang di hari yang
// sama meng-update baris yang ada.
func (s *Store) UpsertPerformanceEvaluation(ctx context.Context, eval *perfModel.PerformanceEvaluationModel) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "performance_evaluation_user_id"},
				{Name: "performance_evaluation_course_id"},
				{Name: "performance_evaluation_date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"performance_evaluation_completion_rate",
				"performance_evaluation_quality_score",
				"performance_evaluation_timeliness_rate",
				"performance_evaluation_total_score",
				"performance_evaluation_detail",
				"updated_at",
			}),
		}).
		Create(eval).Error
}

func (s *Store) OverwriteEnrollmentGrade(ctx context.Context, userID, courseID uuid.UUID, grade datatypes.JSONMap) error {
	return s.db.WithContext(ctx).
		Model(&courseModel.EnrollmentModel{}).
		Where("enrollment_user_id = ?", userID).
		Where("enrollment_course_id = ?", courseID).
		Update("enrollment_grade", grade).Error
}

/* =========================
   Auto-Launch Monitor
========================= */

// Kursus published yang belum launch dan tanggal mulainya belum lewat.
func (s *Store) LaunchCandidates(ctx context.Context, now time.Time) ([]courseModel.CourseModel, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var courses []courseModel.CourseModel
	err := s.db.WithContext(ctx).
		Where("course_is_published = TRUE").
		Where("course_is_launched = FALSE").
		Where("course_start_date IS NULL OR course_start_date >= ?", today).
		Find(&courses).Error
	return courses, err
}

// Predicate sisi-DB: flag trigger + kapasitas vs jumlah enrollment hidup.
func (s *Store) ShouldAutoLaunch(ctx context.Context, courseID uuid.UUID) (bool, error) {
	var ok bool
	err := s.db.WithContext(ctx).
		Raw("SELECT fn_course_should_auto_launch(?)", courseID).
		Scan(&ok).Error
	return ok, err
}

// Guard course_is_launched = FALSE: kalau tick lain sudah lebih dulu,
// RowsAffected = 0 dan pemanggil harus berhenti tanpa error.
func (s *Store) MarkCourseLaunched(ctx context.Context, courseID uuid.UUID, launchedAt time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&courseModel.CourseModel{}).
		Where("course_id = ?", courseID).
		Where("course_is_launched = FALSE").
		Updates(map[string]interface{}{
			"course_is_launched": true,
			"course_status":      constants.CourseStatusActive,
			"course_launched_at": launchedAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (s *Store) ActivateWaitingEnrollments(ctx context.Context, courseID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&courseModel.EnrollmentModel{}).
		Where("enrollment_course_id = ?", courseID).
		Where("enrollment_status = ?", constants.EnrollmentStatusWaitingStart).
		Update("enrollment_status", constants.EnrollmentStatusActive)
	return res.RowsAffected, res.Error
}

func (s *Store) ActiveEnrollmentUserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&courseModel.EnrollmentModel{}).
		Where("enrollment_course_id = ?", courseID).
		Where("enrollment_status = ?", constants.EnrollmentStatusActive).
		Pluck("enrollment_user_id", &ids).Error
	return ids, err
}

// Instansiasi tugas dari template kursus (rutin sisi-DB).
func (s *Store) GenerateCourseTasks(ctx context.Context, courseID uuid.UUID) (int, error) {
	var created int
	err := s.db.WithContext(ctx).
		Raw("SELECT fn_generate_course_tasks(?)", courseID).
		Scan(&created).Error
	return created, err
}

/* =========================
   Notification Sink
========================= */

func (s *Store) CreateNotifications(ctx context.Context, notifs []notifModel.NotificationModel) error {
	return s.notif.CreateMany(ctx, notifs)
}
