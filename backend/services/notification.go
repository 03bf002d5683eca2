package services

import (
	"errors"

	"dailytracker/backend/models"

	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

func (s *NotificationService) Create(userID uint, notifType, title, message string) (*models.Notification, error) {
	n := models.Notification{UserID: userID, Type: notifType, Title: title, Message: message}
	if err := s.DB.Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(userID uint, limit, offset int) ([]models.Notification, error) {
	if limit < 1 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var notifications []models.Notification
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error
	return notifications, err
}

// MarkRead marks one notification read; only the owner's rows are
// reachable.
func (s *NotificationService) MarkRead(notificationID, userID uint) (*models.Notification, error) {
	var n models.Notification
	err := s.DB.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFound("notification not found")
	}
	if err != nil {
		return nil, err
	}
	n.IsRead = true
	if err := s.DB.Save(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAllRead returns the number of rows updated.
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	res := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
