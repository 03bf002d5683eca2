package services

import (
	"errors"
	"fmt"
	"time"

	"dailytracker/backend/models"

	"gorm.io/gorm"
)

// GDPRService implements data export and account erasure. Erasure is the
// one place rows are physically deleted; audit rows are anonymized
// instead so the trail survives the user.
type GDPRService struct {
	DB *gorm.DB
}

func NewGDPRService(db *gorm.DB) *GDPRService {
	return &GDPRService{DB: db}
}

type ExportData struct {
	ExportTimestamp time.Time              `json:"export_timestamp"`
	UserProfile     map[string]interface{} `json:"user_profile"`
	Entries         []models.Entry         `json:"entries"`
	Memberships     []models.GroupMember   `json:"group_memberships"`
	Notifications   []models.Notification  `json:"notifications"`
	AuditLogs       []models.AuditLog      `json:"audit_logs"`
	DataSummary     map[string]int         `json:"data_summary"`
}

// Export returns everything stored about the user, including
// soft-deleted rows.
func (s *GDPRService) Export(userID uint) (*ExportData, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("user not found")
		}
		return nil, err
	}

	out := ExportData{ExportTimestamp: time.Now().UTC()}
	out.UserProfile = map[string]interface{}{
		"id":             user.ID,
		"email":          user.Email,
		"name":           user.Name,
		"role":           user.Role,
		"is_2fa_enabled": user.Is2FAEnabled,
		"created_at":     user.CreatedAt,
		"last_login":     user.LastLogin,
	}

	if err := s.DB.Unscoped().Where("user_id = ?", userID).Find(&out.Entries).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Unscoped().Where("user_id = ?", userID).Find(&out.Memberships).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Where("user_id = ?", userID).Find(&out.Notifications).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Where("user_id = ?", userID).Find(&out.AuditLogs).Error; err != nil {
		return nil, err
	}

	out.DataSummary = map[string]int{
		"total_entries":       len(out.Entries),
		"total_groups":        len(out.Memberships),
		"total_notifications": len(out.Notifications),
		"total_audit_events":  len(out.AuditLogs),
	}
	return &out, nil
}

// DeleteAccount permanently removes the user and their data. The confirm
// flag is mandatory; without it the call is a validation error, never a
// silent no-op. Audit rows are kept with the user reference anonymized.
func (s *GDPRService) DeleteAccount(userID uint, confirm bool) (string, error) {
	if !confirm {
		return "", NewValidation("confirmation required: set confirm=true to proceed")
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", NewNotFound("user not found")
		}
		return "", err
	}

	var entryCount, memberCount, notifCount int64
	s.DB.Unscoped().Model(&models.Entry{}).Where("user_id = ?", userID).Count(&entryCount)
	s.DB.Unscoped().Model(&models.GroupMember{}).Where("user_id = ?", userID).Count(&memberCount)
	s.DB.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&notifCount)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Entry{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AuditLog{}).Where("user_id = ?", userID).
			Update("user_id", models.AnonymousUserID).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Account permanently deleted. Removed %d entries, %d group memberships, %d notifications; audit trail anonymized.",
		entryCount, memberCount, notifCount), nil
}
