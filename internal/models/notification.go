package models

import "time"

// Notification types created as side effects of social actions.
const (
	NotificationTypeLike   = "like"
	NotificationTypeFollow = "follow"
)

// Notification represents a social-event record (PostgreSQL). FromID and
// ToID are MongoDB user ids in hex form.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Type      string    `json:"type" gorm:"size:30;index"` // like, follow
	FromID    string    `json:"from" gorm:"column:from_id;size:24;index"`
	ToID      string    `json:"to" gorm:"column:to_id;size:24;index"`
	IsRead    bool      `json:"isRead" gorm:"index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}
