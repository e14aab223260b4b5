package notification

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType defines the type of notification.
type NotificationType string

const (
	ComplaintUpdate NotificationType = "ComplaintUpdate"
	LostItemUpdate  NotificationType = "LostItemUpdate"
	Deleted         NotificationType = "Deleted"
)

// BadgeCap is the largest unread count shown as a number; anything above renders as "9+".
const BadgeCap = 9

// Notification is an in-app message to a student, written only by admin workflows.
type Notification struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID        `gorm:"type:uuid;not null;index:idx_notification_user_status" json:"user_id"`
	Type               NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Message            string           `gorm:"type:text;not null" json:"message"`
	RelatedComplaintID *uuid.UUID       `gorm:"type:uuid" json:"related_complaint_id,omitempty"`
	RelatedLostItemID  *uuid.UUID       `gorm:"type:uuid" json:"related_lost_item_id,omitempty"`
	IsRead             bool             `gorm:"not null;default:false;index:idx_notification_user_status" json:"is_read"`
	CreatedAt          time.Time        `gorm:"not null;index:idx_notification_user_status" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Related points a notification at the record it is about.
type Related struct {
	ComplaintID *uuid.UUID
	LostItemID  *uuid.UUID
}

// UnreadCountResponse is the bell badge payload.
type UnreadCountResponse struct {
	Count int64  `json:"count"`
	Badge string `json:"badge"`
}

// BadgeLabel renders an unread count for the badge: empty for zero, "9+" above BadgeCap.
func BadgeLabel(count int64) string {
	switch {
	case count <= 0:
		return ""
	case count > BadgeCap:
		return "9+"
	default:
		return strconv.FormatInt(count, 10)
	}
}
