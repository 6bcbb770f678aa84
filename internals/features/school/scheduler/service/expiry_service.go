package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"

	"kajianku_backend/internals/constants"
	notifModel "kajianku_backend/internals/features/school/notifications/model"
	taskModel "kajianku_backend/internals/features/school/tasks/model"
)

// ExpiryService (Expiry & Penalty Engine): menemukan tugas aktif yang lewat
// jatuh tempo tanpa submission selesai dan tanpa baris penalti, lalu
// menerapkan penalti sesuai tipe tepat satu kali. Baris penalti adalah guard
// idempotensinya — cek keberadaan + insert + update status satu transaksi.
type ExpiryService struct {
	store SchedulerStore
	loc   *time.Location
	nowFn func() time.Time
}

func NewExpiryService(store SchedulerStore, loc *time.Location) *ExpiryService {
	return &ExpiryService{
		store: store,
		loc:   loc,
		nowFn: time.Now,
	}
}

// RunDaily memproses tugas tipe harian → status akhir "expired".
func (s *ExpiryService) RunDaily(ctx context.Context) error {
	return s.run(ctx, "EXPIRY", constants.DailyTaskTypes, constants.TaskStatusExpired)
}

// RunFixed memproses tugas tipe tetap (homework, exam, dst) → status "overdue".
// Berjalan di slot cron terpisah dari pass harian.
func (s *ExpiryService) RunFixed(ctx context.Context) error {
	return s.run(ctx, "OVERDUE", constants.FixedTaskTypes, constants.TaskStatusOverdue)
}

func (s *ExpiryService) run(ctx context.Context, tag string, taskTypes []string, terminalStatus string) error {
	now := s.nowFn().In(s.loc)

	candidates, err := s.store.OverdueTaskCandidates(ctx, taskTypes, now)
	if err != nil {
		log.Printf("[%s] gagal ambil kandidat tugas kedaluwarsa: %v", tag, err)
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	failed := 0
	for _, task := range candidates {
		if err := s.penalize(ctx, task, terminalStatus); err != nil {
			log.Printf("[%s] tugas %s gagal dipenalti: %v", tag, task.TaskID, err)
			failed++
		}
	}

	log.Printf("[%s] %d tugas diproses, %d gagal", tag, len(candidates)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d dari %d tugas gagal dipenalti", failed, len(candidates))
	}
	return nil
}

// Cek-lalu-tulis di dalam satu transaksi supaya tidak ada race antara
// pemeriksaan penalti dan penulisannya saat tick tumpang tindih.
func (s *ExpiryService) penalize(ctx context.Context, task taskModel.TaskModel, terminalStatus string) error {
	percentage := constants.PenaltyPercentageFor(task.TaskType)

	return s.store.WithTx(ctx, func(tx SchedulerStore) error {
		exists, err := tx.HasPenalty(ctx, task.TaskID)
		if err != nil {
			return err
		}
		if exists {
			// Tick lain sudah memenalti tugas ini
			return nil
		}

		penalty := taskModel.TaskPenaltyModel{
			TaskPenaltyTaskID:     task.TaskID,
			TaskPenaltyUserID:     task.TaskUserID,
			TaskPenaltyCourseID:   task.TaskCourseID,
			TaskPenaltyPercentage: percentage,
			TaskPenaltyReason:     fmt.Sprintf("Tugas %s (%s) tidak dikumpulkan sampai jatuh tempo", task.TaskTitle, task.TaskType),
		}
		if err := tx.InsertPenalty(ctx, &penalty); err != nil {
			return err
		}

		if err := tx.MergePenaltyIntoGrade(ctx, task.TaskUserID, task.TaskCourseID, percentage); err != nil {
			return err
		}

		if err := tx.UpdateTaskStatus(ctx, task.TaskID, constants.TaskStatusActive, terminalStatus); err != nil {
			return err
		}

		taskID := task.TaskID
		return tx.CreateNotifications(ctx, []notifModel.NotificationModel{{
			NotificationUserID:    task.TaskUserID,
			NotificationType:      constants.NotificationTypeTaskPenalty,
			NotificationTitle:     "Tugas melewati jatuh tempo",
			NotificationMessage:   fmt.Sprintf("Tugas %q tidak dikumpulkan — penalti %d%% diterapkan.", task.TaskTitle, percentage),
			NotificationRelatedID: &taskID,
			NotificationPayload: datatypes.JSONMap{
				"course_id":          task.TaskCourseID.String(),
				"task_type":          task.TaskType,
				"penalty_percentage": percentage,
				"status":             terminalStatus,
			},
		}})
	})
}
