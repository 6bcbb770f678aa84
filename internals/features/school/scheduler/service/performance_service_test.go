package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"kajianku_backend/internals/constants"
	courseModel "kajianku_backend/internals/features/school/courses/model"
)

func newPerformanceFixture(now time.Time) (*PerformanceService, *mockStore) {
	m := newMockStore()
	svc := NewPerformanceService(m, time.UTC)
	svc.nowFn = func() time.Time { return now }
	return svc, m
}

func seedLaunchedEnrollment(m *mockStore, result PerformanceResult) courseModel.EnrollmentModel {
	courseID := uuid.New()
	m.courses[courseID] = courseModel.CourseModel{
		CourseID:         courseID,
		CourseTitle:      "Tahsin Dasar",
		CourseStatus:     constants.CourseStatusActive,
		CourseIsLaunched: true,
	}

	e := courseModel.EnrollmentModel{
		EnrollmentID:       uuid.New(),
		EnrollmentUserID:   uuid.New(),
		EnrollmentCourseID: courseID,
		EnrollmentRoleTier: constants.EnrollmentTierParticipant,
		EnrollmentStatus:   constants.EnrollmentStatusActive,
	}
	m.enrollments[ucKey(e.EnrollmentUserID, e.EnrollmentCourseID)] = e
	m.perfResults[ucKey(e.EnrollmentUserID, e.EnrollmentCourseID)] = result
	return e
}

// Satu run → satu baris evaluasi per enrollment + grade dioverwrite dengan
// payload lengkap.
func TestPerformanceRunWritesEvaluationAndGrade(t *testing.T) {
	now := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	svc, m := newPerformanceFixture(now)

	e := seedLaunchedEnrollment(m, PerformanceResult{
		CompletionRate: 80,
		QualityScore:   72.5,
		TimelinessRate: 90,
		TotalScore:     79.1,
		Detail:         datatypes.JSONMap{"tasks_done": 12},
	})

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(m.evals) != 1 {
		t.Fatalf("baris evaluasi seharusnya 1, dapat %d", len(m.evals))
	}
	evalDate := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	eval, ok := m.evals[evalKey(e.EnrollmentUserID, e.EnrollmentCourseID, evalDate)]
	if !ok {
		t.Fatal("baris evaluasi tidak ditemukan pada (user, course, tanggal) yang diharapkan")
	}
	if eval.PerformanceEvaluationTotalScore != 79.1 {
		t.Errorf("total_score seharusnya 79.1, dapat %v", eval.PerformanceEvaluationTotalScore)
	}

	grade := m.enrollments[ucKey(e.EnrollmentUserID, e.EnrollmentCourseID)].EnrollmentGrade
	if grade == nil {
		t.Fatal("enrollment_grade seharusnya terisi")
	}
	if grade["total_score"] != 79.1 {
		t.Errorf("grade total_score seharusnya 79.1, dapat %v", grade["total_score"])
	}
	if grade["role_tier"] != constants.EnrollmentTierParticipant {
		t.Errorf("grade role_tier seharusnya participant, dapat %v", grade["role_tier"])
	}
	if grade["evaluated_at"] != "2026-08-29" {
		t.Errorf("grade evaluated_at seharusnya 2026-08-29, dapat %v", grade["evaluated_at"])
	}

	if len(m.notifs) != 1 {
		t.Fatalf("notifikasi seharusnya 1, dapat %d", len(m.notifs))
	}
	if m.notifs[0].NotificationType != constants.NotificationTypeEvalUpdated {
		t.Errorf("tipe notifikasi salah: %s", m.notifs[0].NotificationType)
	}
}

// Run berulang di hari yang sama meng-update baris yang ada, bukan menduplikasi.
func TestPerformanceRunUpsertsSameDay(t *testing.T) {
	now := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	svc, m := newPerformanceFixture(now)

	e := seedLaunchedEnrollment(m, PerformanceResult{TotalScore: 60})

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run pertama error: %v", err)
	}

	// Skor berubah di antara dua run
	m.perfResults[ucKey(e.EnrollmentUserID, e.EnrollmentCourseID)] = PerformanceResult{TotalScore: 85}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run kedua error: %v", err)
	}

	if len(m.evals) != 1 {
		t.Fatalf("baris evaluasi seharusnya tetap 1, dapat %d", len(m.evals))
	}
	evalDate := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	eval := m.evals[evalKey(e.EnrollmentUserID, e.EnrollmentCourseID, evalDate)]
	if eval.PerformanceEvaluationTotalScore != 85 {
		t.Errorf("total_score seharusnya ter-update jadi 85, dapat %v", eval.PerformanceEvaluationTotalScore)
	}
}

// Enrollment di kursus yang belum launch tidak ikut dievaluasi.
func TestPerformanceSkipsUnlaunchedCourses(t *testing.T) {
	now := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	svc, m := newPerformanceFixture(now)

	courseID := uuid.New()
	m.courses[courseID] = courseModel.CourseModel{
		CourseID:          courseID,
		CourseIsPublished: true,
	}
	e := courseModel.EnrollmentModel{
		EnrollmentID:       uuid.New(),
		EnrollmentUserID:   uuid.New(),
		EnrollmentCourseID: courseID,
		EnrollmentStatus:   constants.EnrollmentStatusActive,
	}
	m.enrollments[ucKey(e.EnrollmentUserID, e.EnrollmentCourseID)] = e

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(m.evals) != 0 {
		t.Errorf("tidak boleh ada evaluasi untuk kursus yang belum launch, dapat %d", len(m.evals))
	}
}

// Kegagalan kalkulasi satu user tidak menghentikan batch; error agregat
// tetap dikembalikan.
func TestPerformanceRunIsolatesFailures(t *testing.T) {
	now := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	svc, m := newPerformanceFixture(now)

	good := seedLaunchedEnrollment(m, PerformanceResult{TotalScore: 70})
	bad := seedLaunchedEnrollment(m, PerformanceResult{TotalScore: 50})
	m.failCalc[ucKey(bad.EnrollmentUserID, bad.EnrollmentCourseID)] = true

	err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("Run seharusnya mengembalikan error agregat")
	}

	evalDate := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if _, ok := m.evals[evalKey(good.EnrollmentUserID, good.EnrollmentCourseID, evalDate)]; !ok {
		t.Error("user yang sehat seharusnya tetap dievaluasi")
	}
	if _, ok := m.evals[evalKey(bad.EnrollmentUserID, bad.EnrollmentCourseID, evalDate)]; ok {
		t.Error("user yang gagal tidak boleh punya baris evaluasi")
	}
	if len(m.notifs) != 1 {
		t.Errorf("hanya user yang sehat yang dinotifikasi, dapat %d notifikasi", len(m.notifs))
	}
}
