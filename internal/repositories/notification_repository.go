package repositories

import (
	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification log
// operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByRecipientID(toID string) ([]models.Notification, error)
	MarkAllAsRead(toID string) error
	DeleteAllForRecipient(toID string) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a GORM-backed notification log
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) GetByRecipientID(toID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.Where("to_id = ?", toID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) MarkAllAsRead(toID string) error {
	return r.db.Model(&models.Notification{}).Where("to_id = ? AND is_read = false", toID).Update("is_read", true).Error
}

func (r *postgresNotificationRepository) DeleteAllForRecipient(toID string) error {
	return r.db.Where("to_id = ?", toID).Delete(&models.Notification{}).Error
}
