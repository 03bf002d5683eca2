package services

import (
	"errors"

	"dailytracker/backend/models"

	"gorm.io/gorm"
)

// Principal is the verified caller identity, built once per request by
// the auth middleware from token claims. Services never resolve identity
// from ambient state.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == models.RoleSuperAdmin
}

// Gate answers "may this principal touch this resource". Every service
// call that reads another user's data or mutates a group consults it
// first. Denials emit a best-effort unauthorized_access audit event;
// a failure to log never masks the denial itself.
type Gate struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewGate(db *gorm.DB, audit *AuditService) *Gate {
	return &Gate{DB: db, Audit: audit}
}

// IsMember reports whether the user holds an active membership.
func (g *Gate) IsMember(groupID, userID uint) (bool, error) {
	var member models.GroupMember
	err := g.DB.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RequireMember fails with ForbiddenError unless the principal is an
// active member of the group. The group must exist and be active.
func (g *Gate) RequireMember(p Principal, groupID uint) error {
	var group models.Group
	if err := g.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("group not found")
		}
		return err
	}
	ok, err := g.IsMember(groupID, p.UserID)
	if err != nil {
		return err
	}
	if !ok {
		g.auditDenial(p, "group", groupID, "membership required")
		return NewForbidden("you are not a member of this group")
	}
	return nil
}

// RequireOwner fails unless the principal is the group's current owner.
// Group mutations (members, rename, transfer) all pass through here.
func (g *Gate) RequireOwner(p Principal, groupID uint) error {
	var group models.Group
	if err := g.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("group not found")
		}
		return err
	}
	if group.OwnerID != p.UserID {
		g.auditDenial(p, "group", groupID, "owner required")
		return NewForbidden("only the group owner can perform this action")
	}
	return nil
}

// RequireMemberRead authorizes reading targetUserID's data within a
// group: always allowed for self, otherwise only for the group owner or
// a super admin.
func (g *Gate) RequireMemberRead(p Principal, groupID, targetUserID uint) error {
	if err := g.RequireMember(p, groupID); err != nil {
		return err
	}
	if targetUserID == p.UserID || p.IsSuperAdmin() {
		return nil
	}
	var group models.Group
	if err := g.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("group not found")
		}
		return err
	}
	if group.OwnerID != p.UserID {
		g.auditDenial(p, "member_data", groupID, "cross-user read requires group owner")
		return NewForbidden("only the group owner can view other members' data")
	}
	return nil
}

// RequireSuperAdmin gates global analytics, audit logs, backups and role
// changes.
func (g *Gate) RequireSuperAdmin(p Principal, endpoint string) error {
	if p.IsSuperAdmin() {
		return nil
	}
	g.auditDenial(p, "endpoint", 0, endpoint)
	return NewForbidden("super admin access required")
}

func (g *Gate) auditDenial(p Principal, resourceType string, resourceID uint, reason string) {
	if g.Audit == nil {
		return
	}
	// Best effort only.
	g.Audit.LogEvent(p.UserID, "unauthorized_access", resourceType, resourceID,
		map[string]interface{}{"reason": reason}, "")
}
