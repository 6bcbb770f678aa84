package constants

// ==========================
// ✅ Tipe tugas
// ==========================
const (
	TaskTypeDailyReading     = "daily_reading"
	TaskTypeDailyQuiz        = "daily_quiz"
	TaskTypeDailyEvaluation  = "daily_evaluation"
	TaskTypeDailyMonitoring  = "daily_monitoring"
	TaskTypeHomework         = "homework"
	TaskTypeExam             = "exam"
	TaskTypePreparation      = "preparation"
	TaskTypeWeeklyReport     = "weekly_report"
	TaskTypeWeeklyEvaluation = "weekly_evaluation"
)

// Tipe harian → status akhir "expired", tipe tetap → "overdue"
var (
	DailyTaskTypes = []string{
		TaskTypeDailyReading,
		TaskTypeDailyQuiz,
		TaskTypeDailyEvaluation,
		TaskTypeDailyMonitoring,
	}

	FixedTaskTypes = []string{
		TaskTypeHomework,
		TaskTypeExam,
		TaskTypePreparation,
		TaskTypeWeeklyReport,
		TaskTypeWeeklyEvaluation,
	}
)

// ==========================
// ✅ Status tugas
// ==========================
const (
	TaskStatusPending   = "pending"
	TaskStatusActive    = "active"
	TaskStatusCompleted = "completed"
	TaskStatusExpired   = "expired"
	TaskStatusOverdue   = "overdue"
)

// ==========================
// ✅ Status enrollment & course
// ==========================
const (
	EnrollmentStatusWaitingStart = "waiting_start"
	EnrollmentStatusActive       = "active"
	EnrollmentStatusFinished     = "finished"
	EnrollmentStatusDropped      = "dropped"

	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusActive    = "active"
	CourseStatusFinished  = "finished"
)

// ==========================
// ✅ Tier peserta (hirarki 3 tingkat)
// ==========================
const (
	EnrollmentTierParticipant = "participant"
	EnrollmentTierMentor      = "mentor"
	EnrollmentTierSupervisor  = "supervisor"
)

// ==========================
// ✅ Persentase penalti per tipe tugas
// ==========================
const DefaultPenaltyPercentage = 5

var penaltyPercentageByType = map[string]int{
	TaskTypeDailyReading: 10,
	TaskTypeDailyQuiz:    10,
	TaskTypeHomework:     15,
	TaskTypeExam:         25,
}

// PenaltyPercentageFor mengembalikan persentase penalti untuk tipe tugas tertentu.
// Tipe yang tidak terdaftar memakai DefaultPenaltyPercentage.
func PenaltyPercentageFor(taskType string) int {
	if p, ok := penaltyPercentageByType[taskType]; ok {
		return p
	}
	return DefaultPenaltyPercentage
}

// IsDailyTaskType true bila tipe termasuk tugas harian.
func IsDailyTaskType(taskType string) bool {
	for _, t := range DailyTaskTypes {
		if t == taskType {
			return true
		}
	}
	return false
}

// ==========================
// ✅ Tipe notifikasi scheduler
// ==========================
const (
	NotificationTypeTaskReleased = "task_released"
	NotificationTypeTaskPenalty  = "task_penalty"
	NotificationTypeCourseLaunch = "course_launched"
	NotificationTypeEvalUpdated  = "performance_updated"
)
