package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names. A user holds exactly one role; group ownership is tracked
// separately on Group.OwnerID.
const (
	RoleUser       = "USER"
	RoleGroupAdmin = "GROUP_ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

type User struct {
	gorm.Model
	Email        string `gorm:"not null;uniqueIndex:uq_active_user_email,where:deleted_at IS NULL"`
	PasswordHash string `gorm:"not null"`
	Name         string `gorm:"not null"`
	Role         string `gorm:"not null;default:USER"`
	TOTPSecret   string
	Is2FAEnabled bool `gorm:"not null;default:false"`
	LastLogin    *time.Time
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
