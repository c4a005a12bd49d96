package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
)

// Pusher is the live delivery channel for notifications, keyed by recipient.
// Implementations are best-effort; the persisted row is the durability
// guarantee.
type Pusher interface {
	Publish(recipientID uint, payload interface{}) error
}

// NotificationService persists notifications and pushes them to the live
// channel. The channel handle is passed in at construction, never attached
// later.
type NotificationService struct {
	DB     *gorm.DB
	Pusher Pusher
	Logger *log.Logger
}

func NewNotificationService(db *gorm.DB, pusher Pusher, logger *log.Logger) *NotificationService {
	return &NotificationService{DB: db, Pusher: pusher, Logger: logger}
}

// Notify persists a notification for recipientID and then attempts a live
// push. Push failures are logged and swallowed.
func (s *NotificationService) Notify(recipientID uint, senderID *uint, message, ntype string) error {
	notification := models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Message:     message,
		Type:        ntype,
	}
	if err := s.DB.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	if s.Pusher != nil {
		if err := s.Pusher.Publish(recipientID, notification); err != nil {
			s.Logger.Printf("live push to user %d failed: %v", recipientID, err)
		}
	}
	return nil
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.DB.Where("recipient_id = ?", userID).
		Preload("Sender").
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAsRead marks one of userID's notifications as read. Marking an
// already-read notification is a no-op.
func (s *NotificationService) MarkAsRead(userID, notificationID uint) error {
	var notification models.Notification
	if err := s.DB.Where("id = ? AND recipient_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: notification %d", ErrNotFound, notificationID)
		}
		return err
	}
	if notification.IsRead {
		return nil
	}
	return s.DB.Model(&notification).Update("is_read", true).Error
}

// MarkAllAsRead marks every unread notification for userID as read.
// Calling it twice in a row is harmless; the second call updates nothing.
func (s *NotificationService) MarkAllAsRead(userID uint) error {
	return s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// UnreadCount returns the number of unread notifications for userID.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
