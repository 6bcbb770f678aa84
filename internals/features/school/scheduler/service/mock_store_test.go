package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"kajianku_backend/internals/constants"
	schedModel "kajianku_backend/internals/features/school/course_schedules/model"
	courseModel "kajianku_backend/internals/features/school/courses/model"
	notifModel "kajianku_backend/internals/features/school/notifications/model"
	perfModel "kajianku_backend/internals/features/school/performance/model"
	taskModel "kajianku_backend/internals/features/school/tasks/model"
)

// ── Mock SchedulerStore (in-memory) ──
//
// Meniru semantik kontrak SQL kanonik: guard flag pada aktivasi, unique
// constraint pada penalti, upsert per (user, course, tanggal), dan rollback
// transaksi lewat snapshot-restore.

type mockStore struct {
	entries     map[uuid.UUID]schedModel.CourseScheduleModel
	tasks       map[uuid.UUID]taskModel.TaskModel
	penalties   map[uuid.UUID]taskModel.TaskPenaltyModel        // key: task id
	completed   map[uuid.UUID]bool                              // task id → punya submission "completed"
	enrollments map[string]courseModel.EnrollmentModel          // key: user|course
	evals       map[string]perfModel.PerformanceEvaluationModel // key: user|course|date
	courses     map[uuid.UUID]courseModel.CourseModel
	notifs      []notifModel.NotificationModel

	perfResults  map[string]PerformanceResult // key: user|course
	autoLaunchOK map[uuid.UUID]bool
	taskGenCount map[uuid.UUID]int

	failCalc        map[string]bool    // user|course → paksa error kalkulasi
	failGenerate    map[uuid.UUID]bool // course → paksa error instansiasi tugas
	failMarkRelease map[uuid.UUID]bool // entri → paksa error saat set flag rilis
	panicOnDue      bool               // paksa panic di query entri jatuh tempo
}

func newMockStore() *mockStore {
	return &mockStore{
		entries:         make(map[uuid.UUID]schedModel.CourseScheduleModel),
		tasks:           make(map[uuid.UUID]taskModel.TaskModel),
		penalties:       make(map[uuid.UUID]taskModel.TaskPenaltyModel),
		completed:       make(map[uuid.UUID]bool),
		enrollments:     make(map[string]courseModel.EnrollmentModel),
		evals:           make(map[string]perfModel.PerformanceEvaluationModel),
		courses:         make(map[uuid.UUID]courseModel.CourseModel),
		perfResults:     make(map[string]PerformanceResult),
		autoLaunchOK:    make(map[uuid.UUID]bool),
		taskGenCount:    make(map[uuid.UUID]int),
		failCalc:        make(map[string]bool),
		failGenerate:    make(map[uuid.UUID]bool),
		failMarkRelease: make(map[uuid.UUID]bool),
	}
}

func ucKey(userID, courseID uuid.UUID) string {
	return userID.String() + "|" + courseID.String()
}

func evalKey(userID, courseID uuid.UUID, date time.Time) string {
	return ucKey(userID, courseID) + "|" + date.Format("2006-01-02")
}

func (m *mockStore) clone() *mockStore {
	c := newMockStore()
	for k, v := range m.entries {
		c.entries[k] = v
	}
	for k, v := range m.tasks {
		c.tasks[k] = v
	}
	for k, v := range m.penalties {
		c.penalties[k] = v
	}
	for k, v := range m.completed {
		c.completed[k] = v
	}
	for k, v := range m.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range m.evals {
		c.evals[k] = v
	}
	for k, v := range m.courses {
		c.courses[k] = v
	}
	for k, v := range m.perfResults {
		c.perfResults[k] = v
	}
	for k, v := range m.autoLaunchOK {
		c.autoLaunchOK[k] = v
	}
	for k, v := range m.taskGenCount {
		c.taskGenCount[k] = v
	}
	for k, v := range m.failCalc {
		c.failCalc[k] = v
	}
	for k, v := range m.failGenerate {
		c.failGenerate[k] = v
	}
	for k, v := range m.failMarkRelease {
		c.failMarkRelease[k] = v
	}
	c.panicOnDue = m.panicOnDue
	c.notifs = append(c.notifs, m.notifs...)
	return c
}

// Rollback disimulasikan dengan snapshot-restore.
func (m *mockStore) WithTx(_ context.Context, fn func(tx SchedulerStore) error) error {
	snapshot := m.clone()
	if err := fn(m); err != nil {
		*m = *snapshot
		return err
	}
	return nil
}

// ── Task Release Engine ──

func (m *mockStore) DueScheduleEntries(_ context.Context, now time.Time) ([]schedModel.CourseScheduleModel, error) {
	if m.panicOnDue {
		panic("koneksi DB hilang di tengah query")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var out []schedModel.CourseScheduleModel
	for _, e := range m.entries {
		if e.CourseScheduleTasksReleased {
			continue
		}
		if e.CourseScheduleDate.After(today) {
			continue
		}
		if e.CourseScheduleMeetingEndAt != nil && e.CourseScheduleMeetingEndAt.After(now) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockStore) InactiveTasksForEntry(_ context.Context, entryID uuid.UUID) ([]taskModel.TaskModel, error) {
	var out []taskModel.TaskModel
	for _, t := range m.tasks {
		if t.TaskScheduleID != nil && *t.TaskScheduleID == entryID &&
			!t.TaskIsActive && t.TaskStatus == constants.TaskStatusPending {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) ActivateTasks(_ context.Context, taskIDs []uuid.UUID, releasedAt time.Time) error {
	for _, id := range taskIDs {
		t, ok := m.tasks[id]
		if !ok || t.TaskIsActive {
			continue
		}
		at := releasedAt
		t.TaskIsActive = true
		t.TaskStatus = constants.TaskStatusActive
		t.TaskReleasedAt = &at
		m.tasks[id] = t
	}
	return nil
}

func (m *mockStore) MarkEntryReleased(_ context.Context, entryID uuid.UUID) (bool, error) {
	if m.failMarkRelease[entryID] {
		return false, fmt.Errorf("deadlock detected saat update entri %s", entryID)
	}
	e, ok := m.entries[entryID]
	if !ok || e.CourseScheduleTasksReleased {
		return false, nil
	}
	e.CourseScheduleTasksReleased = true
	m.entries[entryID] = e
	return true, nil
}

// ── Expiry & Penalty Engine ──

func (m *mockStore) OverdueTaskCandidates(_ context.Context, taskTypes []string, now time.Time) ([]taskModel.TaskModel, error) {
	typeSet := make(map[string]bool, len(taskTypes))
	for _, t := range taskTypes {
		typeSet[t] = true
	}

	var out []taskModel.TaskModel
	for _, t := range m.tasks {
		if !typeSet[t.TaskType] || t.TaskStatus != constants.TaskStatusActive {
			continue
		}
		if t.TaskDueAt == nil || !t.TaskDueAt.Before(now) {
			continue
		}
		if m.completed[t.TaskID] {
			continue
		}
		if _, exists := m.penalties[t.TaskID]; exists {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *mockStore) HasPenalty(_ context.Context, taskID uuid.UUID) (bool, error) {
	_, ok := m.penalties[taskID]
	return ok, nil
}

func (m *mockStore) InsertPenalty(_ context.Context, penalty *taskModel.TaskPenaltyModel) error {
	if _, exists := m.penalties[penalty.TaskPenaltyTaskID]; exists {
		return fmt.Errorf("duplicate key: uq_task_penalty_task")
	}
	m.penalties[penalty.TaskPenaltyTaskID] = *penalty
	return nil
}

func (m *mockStore) MergePenaltyIntoGrade(_ context.Context, userID, courseID uuid.UUID, percentage int) error {
	key := ucKey(userID, courseID)
	e, ok := m.enrollments[key]
	if !ok {
		return nil
	}
	if e.EnrollmentGrade == nil {
		e.EnrollmentGrade = datatypes.JSONMap{}
	}
	total, _ := e.EnrollmentGrade["penalty_total"].(float64)
	count, _ := e.EnrollmentGrade["penalty_count"].(float64)
	e.EnrollmentGrade["penalty_total"] = total + float64(percentage)
	e.EnrollmentGrade["penalty_count"] = count + 1
	m.enrollments[key] = e
	return nil
}

func (m *mockStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, fromStatus, toStatus string) error {
	t, ok := m.tasks[taskID]
	if !ok || t.TaskStatus != fromStatus {
		return nil
	}
	t.TaskStatus = toStatus
	m.tasks[taskID] = t
	return nil
}

// ── Performance Evaluator ──

func (m *mockStore) ActiveEnrollmentsInLaunchedCourses(_ context.Context) ([]courseModel.EnrollmentModel, error) {
	var out []courseModel.EnrollmentModel
	for _, e := range m.enrollments {
		if e.EnrollmentStatus != constants.EnrollmentStatusActive {
			continue
		}
		course, ok := m.courses[e.EnrollmentCourseID]
		if !ok || !course.CourseIsLaunched {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockStore) CalculateUserPerformance(_ context.Context, userID, courseID uuid.UUID) (*PerformanceResult, error) {
	key := ucKey(userID, courseID)
	if m.failCalc[key] {
		return nil, fmt.Errorf("fn_calculate_user_performance error untuk %s", key)
	}
	r, ok := m.perfResults[key]
	if !ok {
		return nil, fmt.Errorf("fn_calculate_user_performance mengembalikan payload kosong untuk %s", key)
	}
	return &r, nil
}

func (m *mockStore) UpsertPerformanceEvaluation(_ context.Context, eval *perfModel.PerformanceEvaluationModel) error {
	key := evalKey(eval.PerformanceEvaluationUserID, eval.PerformanceEvaluationCourseID, eval.PerformanceEvaluationDate)
	if existing, ok := m.evals[key]; ok {
		existing.PerformanceEvaluationCompletionRate = eval.PerformanceEvaluationCompletionRate
		existing.PerformanceEvaluationQualityScore = eval.PerformanceEvaluationQualityScore
		existing.PerformanceEvaluationTimelinessRate = eval.PerformanceEvaluationTimelinessRate
		existing.PerformanceEvaluationTotalScore = eval.PerformanceEvaluationTotalScore
		existing.PerformanceEvaluationDetail = eval.PerformanceEvaluationDetail
		m.evals[key] = existing
		return nil
	}
	m.evals[key] = *eval
	return nil
}

func (m *mockStore) OverwriteEnrollmentGrade(_ context.Context, userID, courseID uuid.UUID, grade datatypes.JSONMap) error {
	key := ucKey(userID, courseID)
	e, ok := m.enrollments[key]
	if !ok {
		return nil
	}
	e.EnrollmentGrade = grade
	m.enrollments[key] = e
	return nil
}

// ── Auto-Launch Monitor ──

func (m *mockStore) LaunchCandidates(_ context.Context, now time.Time) ([]courseModel.CourseModel, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var out []courseModel.CourseModel
	for _, c := range m.courses {
		if !c.CourseIsPublished || c.CourseIsLaunched {
			continue
		}
		if c.CourseStartDate != nil && c.CourseStartDate.Before(today) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockStore) ShouldAutoLaunch(_ context.Context, courseID uuid.UUID) (bool, error) {
	return m.autoLaunchOK[courseID], nil
}

func (m *mockStore) MarkCourseLaunched(_ context.Context, courseID uuid.UUID, launchedAt time.Time) (bool, error) {
	c, ok := m.courses[courseID]
	if !ok || c.CourseIsLaunched {
		return false, nil
	}
	at := launchedAt
	c.CourseIsLaunched = true
	c.CourseStatus = constants.CourseStatusActive
	c.CourseLaunchedAt = &at
	m.courses[courseID] = c
	return true, nil
}

func (m *mockStore) ActivateWaitingEnrollments(_ context.Context, courseID uuid.UUID) (int64, error) {
	var activated int64
	for k, e := range m.enrollments {
		if e.EnrollmentCourseID == courseID && e.EnrollmentStatus == constants.EnrollmentStatusWaitingStart {
			e.EnrollmentStatus = constants.EnrollmentStatusActive
			m.enrollments[k] = e
			activated++
		}
	}
	return activated, nil
}

func (m *mockStore) ActiveEnrollmentUserIDs(_ context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, e := range m.enrollments {
		if e.EnrollmentCourseID == courseID && e.EnrollmentStatus == constants.EnrollmentStatusActive {
			ids = append(ids, e.EnrollmentUserID)
		}
	}
	return ids, nil
}

func (m *mockStore) GenerateCourseTasks(_ context.Context, courseID uuid.UUID) (int, error) {
	if m.failGenerate[courseID] {
		return 0, fmt.Errorf("fn_generate_course_tasks error untuk course %s", courseID)
	}
	return m.taskGenCount[courseID], nil
}

// ── Notification Sink ──

func (m *mockStore) CreateNotifications(_ context.Context, notifs []notifModel.NotificationModel) error {
	m.notifs = append(m.notifs, notifs...)
	return nil
}
