package models

import "time"

// AnonymousUserID replaces the acting user on audit rows after a GDPR
// erasure. The rows themselves are never deleted.
const AnonymousUserID uint = 0

// AuditLog is append-only: rows are inserted and read, never updated
// (except for anonymization) and never deleted.
type AuditLog struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"index"`
	Action       string `gorm:"not null"`
	ResourceType string `gorm:"not null"`
	ResourceID   string `gorm:"not null;index"`
	Metadata     string `gorm:"type:text"` // JSON-encoded, optional
	IPAddress    string
	CreatedAt    time.Time
}
