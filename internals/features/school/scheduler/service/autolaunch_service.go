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
)

// AutoLaunchService (Auto-Launch Monitor): kursus published yang belum
// launch dicek terhadap predicate kapasitas sisi-DB; bila terpenuhi, dalam
// satu transaksi kursus di-launch, enrollment waiting_start diaktifkan,
// tugas diinstansiasi dari template, dan semua peserta aktif dinotifikasi.
// Guard course_is_launched = FALSE mencegah launch ganda antar tick.
type AutoLaunchService struct {
	store SchedulerStore
	loc   *time.Location
	nowFn func() time.Time
}

func NewAutoLaunchService(store SchedulerStore, loc *time.Location) *AutoLaunchService {
	return &AutoLaunchService{
		store: store,
		loc:   loc,
		nowFn: time.Now,
	}
}

// Run: kegagalan satu kursus di-rollback dan dicatat; kursus lain tetap
// diproses, dan yang gagal kembali jadi kandidat di tick berikutnya.
func (s *AutoLaunchService) Run(ctx context.Context) error {
	now := s.nowFn().In(s.loc)

	candidates, err := s.store.LaunchCandidates(ctx, now)
	if err != nil {
		log.Printf("[AUTO-LAUNCH] gagal ambil kandidat kursus: %v", err)
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	launched, failed := 0, 0
	for _, course := range candidates {
		ok, err := s.store.ShouldAutoLaunch(ctx, course.CourseID)
		if err != nil {
			log.Printf("[AUTO-LAUNCH] predicate kursus %s error: %v", course.CourseID, err)
			failed++
			continue
		}
		if !ok {
			continue
		}

		if err := s.launch(ctx, course, now); err != nil {
			log.Printf("[AUTO-LAUNCH] kursus %s gagal launch: %v", course.CourseID, err)
			failed++
			continue
		}
		launched++
	}

	if launched > 0 || failed > 0 {
		log.Printf("[AUTO-LAUNCH] %d kursus launch, %d gagal", launched, failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d kursus gagal diproses auto-launch", failed)
	}
	return nil
}

func (s *AutoLaunchService) launch(ctx context.Context, course courseModel.CourseModel, now time.Time) error {
	return s.store.WithTx(ctx, func(tx SchedulerStore) error {
		marked, err := tx.MarkCourseLaunched(ctx, course.CourseID, now)
		if err != nil {
			return err
		}
		if !marked {
			// Tick lain sudah me-launch kursus ini
			return nil
		}

		activated, err := tx.ActivateWaitingEnrollments(ctx, course.CourseID)
		if err != nil {
			return err
		}

		generated, err := tx.GenerateCourseTasks(ctx, course.CourseID)
		if err != nil {
			return err
		}

		userIDs, err := tx.ActiveEnrollmentUserIDs(ctx, course.CourseID)
		if err != nil {
			return err
		}

		notifs := make([]notifModel.NotificationModel, 0, len(userIDs))
		for _, userID := range userIDs {
			courseID := course.CourseID
			notifs = append(notifs, notifModel.NotificationModel{
				NotificationUserID:    userID,
				NotificationType:      constants.NotificationTypeCourseLaunch,
				NotificationTitle:     "Kursus dimulai",
				NotificationMessage:   fmt.Sprintf("Kursus %q sudah dimulai. Selamat belajar!", course.CourseTitle),
				NotificationRelatedID: &courseID,
				NotificationPayload: datatypes.JSONMap{
					"course_id":    course.CourseID.String(),
					"course_title": course.CourseTitle,
				},
			})
		}
		if err := tx.CreateNotifications(ctx, notifs); err != nil {
			return err
		}

		log.Printf("[AUTO-LAUNCH] kursus %s launch: %d enrollment diaktifkan, %d tugas dibuat",
			course.CourseID, activated, generated)
		return nil
	})
}
