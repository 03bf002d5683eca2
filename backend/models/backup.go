package models

import "time"

const (
	BackupSuccess = "success"
	BackupFailed  = "failed"
)

// BackupLog records the outcome of a backup run. The dump mechanism
// itself lives in the backup service; this table only keeps history.
type BackupLog struct {
	ID         uint   `gorm:"primarykey"`
	BackupFile string `gorm:"not null"`
	BackupSize int64  `gorm:"not null"`
	Status     string `gorm:"not null"`
	CreatedAt  time.Time
}
