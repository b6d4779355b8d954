package model

import "time"

type NotificationType string

const (
	NotificationApproval     NotificationType = "approval"
	NotificationCertificate  NotificationType = "certificate"
	NotificationNewCourse    NotificationType = "new_course"
	NotificationBadge        NotificationType = "badge"
	NotificationAdminMessage NotificationType = "admin_message"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationApproval, NotificationCertificate, NotificationNewCourse, NotificationBadge, NotificationAdminMessage:
		return true
	}
	return false
}

// swagger:model Notification
type Notification struct {
	ID        string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string           `gorm:"type:varchar(36);index;not null" json:"userId"`
	Type      NotificationType `gorm:"size:32;not null" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Read      bool             `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time        `gorm:"index" json:"timestamp"`
}

func (Notification) TableName() string {
	return "notifications"
}

func NewNotification(userID string, typ NotificationType, message string, now time.Time) Notification {
	return Notification{
		ID:        GenerateUUID(),
		UserID:    userID,
		Type:      typ,
		Message:   message,
		CreatedAt: now,
	}
}
