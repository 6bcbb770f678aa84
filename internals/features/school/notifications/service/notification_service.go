package service

import (
	"context"

	"gorm.io/gorm"

	"kajianku_backend/internals/features/school/notifications/model"
)

// NotificationService adalah sink append-only untuk pesan user.
// Dipakai bersama oleh semua engine scheduler; baris tidak pernah di-update.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// CreateMany menulis batch notifikasi sekaligus. Batch kosong bukan error.
func (s *NotificationService) CreateMany(ctx context.Context, notifs []model.NotificationModel) error {
	if len(notifs) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Create(&notifs).Error
}
