package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"kajianku_backend/internals/constants"
	schedModel "kajianku_backend/internals/features/school/course_schedules/model"
	notifModel "kajianku_backend/internals/features/school/notifications/model"
	taskModel "kajianku_backend/internals/features/school/tasks/model"
)

// ReleaseService (Task Release Engine): mengaktifkan tugas yang jendela
// pertemuannya sudah lewat, lalu menandai flag rilis entri jadwal.
// Aktivasi monoton & transaksional — gagal di tengah → rollback penuh dan
// entri tetap eligible di tick berikutnya.
type ReleaseService struct {
	store SchedulerStore
	loc   *time.Location
	nowFn func() time.Time
}

func NewReleaseService(store SchedulerStore, loc *time.Location) *ReleaseService {
	return &ReleaseService{
		store: store,
		loc:   loc,
		nowFn: time.Now,
	}
}

// Run adalah satu tick. Error DB dicatat dan tick berhenti lebih awal;
// pekerjaan yang tersisa diulang di tick berikutnya.
func (s *ReleaseService) Run(ctx context.Context) error {
	now := s.nowFn().In(s.loc)

	entries, err := s.store.DueScheduleEntries(ctx, now)
	if err != nil {
		log.Printf("[RELEASE] gagal ambil entri jadwal jatuh tempo: %v", err)
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	released := 0
	for _, entry := range entries {
		if err := s.releaseEntry(ctx, entry, now); err != nil {
			log.Printf("[RELEASE] entri %s gagal dirilis, tick dihentikan: %v", entry.CourseScheduleID, err)
			return err
		}
		released++
	}

	log.Printf("[RELEASE] %d entri jadwal dirilis", released)
	return nil
}

// Satu transaksi per entri: aktivasi semua tugas non-aktif → set flag rilis
// → satu notifikasi per assignee unik.
func (s *ReleaseService) releaseEntry(ctx context.Context, entry schedModel.CourseScheduleModel, now time.Time) error {
	return s.store.WithTx(ctx, func(tx SchedulerStore) error {
		tasks, err := tx.InactiveTasksForEntry(ctx, entry.CourseScheduleID)
		if err != nil {
			return err
		}

		if len(tasks) > 0 {
			ids := make([]uuid.UUID, 0, len(tasks))
			for _, t := range tasks {
				ids = append(ids, t.TaskID)
			}
			if err := tx.ActivateTasks(ctx, ids, now); err != nil {
				return err
			}
		}

		marked, err := tx.MarkEntryReleased(ctx, entry.CourseScheduleID)
		if err != nil {
			return err
		}
		if !marked {
			// Tick lain sudah lebih dulu menandai entri ini
			return nil
		}

		return tx.CreateNotifications(ctx, buildReleaseNotifications(entry, tasks))
	})
}

// Satu notifikasi per assignee unik, berapa pun jumlah tugasnya.
func buildReleaseNotifications(entry schedModel.CourseScheduleModel, tasks []taskModel.TaskModel) []notifModel.NotificationModel {
	seen := make(map[uuid.UUID]int)
	for _, t := range tasks {
		seen[t.TaskUserID]++
	}

	notifs := make([]notifModel.NotificationModel, 0, len(seen))
	for userID, count := range seen {
		entryID := entry.CourseScheduleID
		notifs = append(notifs, notifModel.NotificationModel{
			NotificationUserID:    userID,
			NotificationType:      constants.NotificationTypeTaskReleased,
			NotificationTitle:     "Tugas baru tersedia",
			NotificationMessage:   fmt.Sprintf("%d tugas untuk hari ke-%d sudah bisa dikerjakan.", count, entry.CourseScheduleDayNumber),
			NotificationRelatedID: &entryID,
			NotificationPayload: datatypes.JSONMap{
				"course_id":   entry.CourseScheduleCourseID.String(),
				"schedule_id": entry.CourseScheduleID.String(),
				"task_count":  count,
			},
		})
	}
	return notifs
}
