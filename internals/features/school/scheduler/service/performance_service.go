package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"

	"kajianku_backend/internals/constants"
	courseModel "kajianku_backend/internals/features/school/courses/model"
	notifModel "kajianku_backend/internals/features/school/notifications/model"
	perfModel "kajianku_backend/internals/features/school/performance/model"
)

// PerformanceService (Performance Evaluator): menghitung ulang skor komposit
// (tingkat penyelesaian, kualitas, ketepatan waktu) untuk setiap enrollment
// aktif di kursus yang sudah launch. Kalkulasi didelegasikan ke rutin
// agregasi sisi-DB; hasilnya di-upsert per (user, course, tanggal) sehingga
// tick berulang di hari yang sama meng-update, bukan menduplikasi.
type PerformanceService struct {
	store SchedulerStore
	loc   *time.Location
	nowFn func() time.Time
}

func NewPerformanceService(store SchedulerStore, loc *time.Location) *PerformanceService {
	return &PerformanceService{
		store: store,
		loc:   loc,
		nowFn: time.Now,
	}
}

// Run: kegagalan satu user dicatat dan dilewati — batch jalan terus.
func (s *PerformanceService) Run(ctx context.Context) error {
	now := s.nowFn().In(s.loc)
	evalDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	enrollments, err := s.store.ActiveEnrollmentsInLaunchedCourses(ctx)
	if err != nil {
		log.Printf("[PERFORMANCE] gagal ambil enrollment aktif: %v", err)
		return err
	}
	if len(enrollments) == 0 {
		return nil
	}

	failed := 0
	for _, e := range enrollments {
		if err := s.evaluate(ctx, e, evalDate); err != nil {
			log.Printf("[PERFORMANCE] evaluasi user=%s course=%s gagal: %v",
				e.EnrollmentUserID, e.EnrollmentCourseID, err)
			failed++
		}
	}

	log.Printf("[PERFORMANCE] %d enrollment dievaluasi, %d gagal", len(enrollments)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d dari %d evaluasi performa gagal", failed, len(enrollments))
	}
	return nil
}

func (s *PerformanceService) evaluate(ctx context.Context, e courseModel.EnrollmentModel, evalDate time.Time) error {
	result, err := s.store.CalculateUserPerformance(ctx, e.EnrollmentUserID, e.EnrollmentCourseID)
	if err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(tx SchedulerStore) error {
		eval := perfModel.PerformanceEvaluationModel{
			PerformanceEvaluationUserID:         e.EnrollmentUserID,
			PerformanceEvaluationCourseID:       e.EnrollmentCourseID,
			PerformanceEvaluationDate:           evalDate,
			PerformanceEvaluationCompletionRate: result.CompletionRate,
			PerformanceEvaluationQualityScore:   result.QualityScore,
			PerformanceEvaluationTimelinessRate: result.TimelinessRate,
			PerformanceEvaluationTotalScore:     result.TotalScore,
			PerformanceEvaluationDetail:         result.Detail,
		}
		if err := tx.UpsertPerformanceEvaluation(ctx, &eval); err != nil {
			return err
		}

		// Nilai run terakhir yang otoritatif — overwrite penuh
		grade := datatypes.JSONMap{
			"completion_rate": result.CompletionRate,
			"quality_score":   result.QualityScore,
			"timeliness_rate": result.TimelinessRate,
			"total_score":     result.TotalScore,
			"evaluated_at":    evalDate.Format("2006-01-02"),
			"role_tier":       e.EnrollmentRoleTier,
		}
		if result.Detail != nil {
			grade["detail"] = map[string]interface{}(result.Detail)
		}
		if err := tx.OverwriteEnrollmentGrade(ctx, e.EnrollmentUserID, e.EnrollmentCourseID, grade); err != nil {
			return err
		}

		courseID := e.EnrollmentCourseID
		return tx.CreateNotifications(ctx, []notifModel.NotificationModel{{
			NotificationUserID:    e.EnrollmentUserID,
			NotificationType:      constants.NotificationTypeEvalUpdated,
			NotificationTitle:     "Evaluasi performa diperbarui",
			NotificationMessage:   fmt.Sprintf("Skor performa terbaru kamu: %.1f.", result.TotalScore),
			NotificationRelatedID: &courseID,
			NotificationPayload: datatypes.JSONMap{
				"course_id":    e.EnrollmentCourseID.String(),
				"total_score":  result.TotalScore,
				"evaluated_at": evalDate.Format("2006-01-02"),
			},
		}})
	})
}
