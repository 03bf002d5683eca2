package services

import (
	"errors"
	"time"

	"dailytracker/backend/models"

	"gorm.io/gorm"
)

// RoleService handles system-level role reassignment. All operations are
// super-admin only; the check lives here rather than in the Gate because
// the demotion cascade needs the same transaction.
type RoleService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewRoleService(db *gorm.DB, audit *AuditService) *RoleService {
	return &RoleService{DB: db, Audit: audit}
}

// PromoteToGroupAdmin makes userID the group admin of groupID. Any
// existing admin of the group is demoted to USER first so a group never
// has two admins.
func (s *RoleService) PromoteToGroupAdmin(p Principal, userID, groupID uint) error {
	if !p.IsSuperAdmin() {
		return NewForbidden("only a super admin can promote users")
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("user not found")
		}
		return err
	}
	var group models.Group
	if err := s.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("group not found")
		}
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if group.OwnerID != 0 && group.OwnerID != userID {
			if err := tx.Model(&models.User{}).Where("id = ?", group.OwnerID).
				Update("role", models.RoleUser).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&user).Update("role", models.RoleGroupAdmin).Error; err != nil {
			return err
		}
		return tx.Model(&group).Update("owner_id", userID).Error
	})
	if err != nil {
		return err
	}

	s.Audit.LogEvent(p.UserID, "promote_to_group_admin", "group", groupID,
		map[string]interface{}{"user_id": userID}, "")
	return nil
}

// DemoteToUser strips userID's group-admin role for groupID. The group is
// left without an admin until a new one is promoted.
func (s *RoleService) DemoteToUser(p Principal, userID, groupID uint) error {
	if !p.IsSuperAdmin() {
		return NewForbidden("only a super admin can demote users")
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("user not found")
		}
		return err
	}
	var group models.Group
	if err := s.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("group not found")
		}
		return err
	}
	if group.OwnerID != userID {
		return NewValidation("user is not the admin of this group")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("role", models.RoleUser).Error; err != nil {
			return err
		}
		return tx.Model(&group).Update("owner_id", 0).Error
	})
	if err != nil {
		return err
	}

	s.Audit.LogEvent(p.UserID, "demote_to_user", "group", groupID,
		map[string]interface{}{"user_id": userID}, "")
	return nil
}

// SoftDeleteUser tombstones a user account along with their active
// memberships and entries.
func (s *RoleService) SoftDeleteUser(p Principal, userID uint) error {
	if !p.IsSuperAdmin() {
		return NewForbidden("only a super admin can delete users")
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("user not found")
		}
		return err
	}

	now := time.Now().UTC()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Entry{}).Where("user_id = ?", userID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.GroupMember{}).Where("user_id = ?", userID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}

	s.Audit.LogEvent(p.UserID, "soft_delete_user", "user", userID, nil, "")
	return nil
}
