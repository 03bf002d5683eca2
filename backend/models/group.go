package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultTimezone = "Asia/Kolkata"

type Group struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Timezone    string `gorm:"not null;default:Asia/Kolkata"`
	// OwnerID is the single user with mutation rights over the group.
	// Zero means the group currently has no admin (after a demotion).
	OwnerID uint `gorm:"index"`
}

// GroupMember links a user to a group. At most one active membership may
// exist per (group, user) pair; the partial unique index enforces it in
// Postgres, the group service enforces it everywhere.
type GroupMember struct {
	gorm.Model
	GroupID   uint      `gorm:"not null;index;uniqueIndex:uq_active_group_member,where:deleted_at IS NULL"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:uq_active_group_member,where:deleted_at IS NULL"`
	JoinedAt  time.Time `gorm:"not null"`
	DayStreak int       `gorm:"not null;default:0"`

	User User `gorm:"foreignKey:UserID"`
}
