package models

import "gorm.io/gorm"

const (
	NotificationIncompleteDay   = "incomplete_day"
	NotificationStreakMilestone = "streak_milestone"
	NotificationAdminAction     = "admin_action"
	NotificationModeration      = "moderation"
)

type Notification struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index"`
	Type    string `gorm:"not null"`
	Title   string `gorm:"not null"`
	Message string `gorm:"type:text;not null"`
	IsRead  bool   `gorm:"not null;default:false"`
}
