package models

import (
	"time"

	"gorm.io/gorm"
)

// The three daily-tracking sections. Stored lower-cased.
const (
	SectionHealth    = "health"
	SectionHappiness = "happiness"
	SectionHela      = "hela" // money
)

// TotalSections is the number of sections a complete day requires.
const TotalSections = 3

// ValidSection reports whether s is one of the three tracked sections.
func ValidSection(s string) bool {
	return s == SectionHealth || s == SectionHappiness || s == SectionHela
}

// Entry is one user's note for one section of one day in one group.
// At most one active entry may exist per (user, group, section, day);
// the partial unique index backs the entry service's check under
// concurrent creates.
type Entry struct {
	gorm.Model
	UserID        uint      `gorm:"not null;index;uniqueIndex:uq_active_daily_entry,where:deleted_at IS NULL"`
	GroupID       uint      `gorm:"not null;index;uniqueIndex:uq_active_daily_entry,where:deleted_at IS NULL"`
	Section       string    `gorm:"not null;uniqueIndex:uq_active_daily_entry,where:deleted_at IS NULL"`
	Content       string    `gorm:"type:text;not null"`
	EntryDate     time.Time `gorm:"not null;index;uniqueIndex:uq_active_daily_entry,where:deleted_at IS NULL"`
	EditCount     int       `gorm:"not null;default:0"`
	IsFlagged     bool      `gorm:"not null;default:false"`
	FlaggedReason string

	User User `gorm:"foreignKey:UserID"`
}

// DateOnly truncates t to a calendar day in UTC. Entry dates are always
// stored through this so equality and range queries behave across drivers.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day as stored in entry_date.
func Today() time.Time {
	return DateOnly(time.Now().UTC())
}
