package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Append-only: tidak pernah di-update setelah dibuat.
type NotificationModel struct {
	NotificationID     uuid.UUID `gorm:"column:notification_id;type:uuid;default:gen_random_uuid();primaryKey" json:"notification_id"`
	NotificationUserID uuid.UUID `gorm:"column:notification_user_id;type:uuid;not null;index" json:"notification_user_id"`

	// task_released | task_penalty | course_launched | performance_updated
	NotificationType    string `gorm:"column:notification_type;type:varchar(30);not null;index" json:"notification_type"`
	NotificationTitle   string `gorm:"column:notification_title;type:varchar(255);not null" json:"notification_title"`
	NotificationMessage string `gorm:"column:notification_message;type:text;not null" json:"notification_message"`

	// Entitas terkait (task, course, dll) — opsional
	NotificationRelatedID *uuid.UUID        `gorm:"column:notification_related_id;type:uuid;index" json:"notification_related_id,omitempty"`
	NotificationPayload   datatypes.JSONMap `gorm:"column:notification_payload;type:jsonb" json:"notification_payload,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName override nama tabel
func (NotificationModel) TableName() string {
	return "notifications"
}
