package services

import (
	"errors"
	"strings"
	"time"

	"dailytracker/backend/models"

	"gorm.io/gorm"
)

// MaxGroupNameLength caps a group's name.
const MaxGroupNameLength = 100

// GroupService owns groups, memberships and ownership. Caller-side
// authorization (who may add or remove) is the Gate's job, not this
// service's.
type GroupService struct {
	DB *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{DB: db}
}

// Create makes a new group owned by ownerID and adds the owner as its
// first member in the same transaction.
func (s *GroupService) Create(name, description, timezone string, ownerID uint) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidation("group name is required")
	}
	if len(name) > MaxGroupNameLength {
		return nil, NewValidation("group name must be at most 100 characters")
	}
	if timezone == "" {
		timezone = models.DefaultTimezone
	}

	group := models.Group{
		Name:        name,
		Description: strings.TrimSpace(description),
		Timezone:    timezone,
		OwnerID:     ownerID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		member := models.GroupMember{GroupID: group.ID, UserID: ownerID, JoinedAt: time.Now().UTC()}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// Update mutates name/description/timezone on an active group.
func (s *GroupService) Update(groupID uint, name, description, timezone *string) (*models.Group, error) {
	group, err := s.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, NewValidation("group name is required")
		}
		if len(n) > MaxGroupNameLength {
			return nil, NewValidation("group name must be at most 100 characters")
		}
		group.Name = n
	}
	if description != nil {
		group.Description = strings.TrimSpace(*description)
	}
	if timezone != nil && *timezone != "" {
		group.Timezone = *timezone
	}
	if err := s.DB.Save(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) GetByID(groupID uint) (*models.Group, error) {
	var group models.Group
	if err := s.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("group not found")
		}
		return nil, err
	}
	return &group, nil
}

// UserGroups returns the active groups the user holds an active
// membership in.
func (s *GroupService) UserGroups(userID uint) ([]models.Group, error) {
	var memberships []models.GroupMember
	if err := s.DB.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []models.Group{}, nil
	}
	ids := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.GroupID)
	}
	var groups []models.Group
	err := s.DB.Where("id IN ?", ids).Find(&groups).Error
	return groups, err
}

// List returns active groups, paginated.
func (s *GroupService) List(limit, offset int) ([]models.Group, error) {
	if limit < 1 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	var groups []models.Group
	err := s.DB.Offset(offset).Limit(limit).Find(&groups).Error
	return groups, err
}

// ListMembers returns a group's active memberships with their users.
func (s *GroupService) ListMembers(groupID uint) ([]models.GroupMember, error) {
	if _, err := s.GetByID(groupID); err != nil {
		return nil, err
	}
	var members []models.GroupMember
	err := s.DB.Preload("User").Where("group_id = ?", groupID).Find(&members).Error
	return members, err
}

// AddMember creates an active membership. Duplicate active memberships
// are a conflict; the DB's partial unique index backs this under races.
func (s *GroupService) AddMember(groupID, userID uint) (*models.GroupMember, error) {
	if _, err := s.GetByID(groupID); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("user not found")
		}
		return nil, err
	}

	var existing models.GroupMember
	err := s.DB.Where("group_id = ? AND user_id = ?", groupID, userID).First(&existing).Error
	if err == nil {
		return nil, NewConflict("user is already a member of this group")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member := models.GroupMember{GroupID: groupID, UserID: userID, JoinedAt: time.Now().UTC()}
	if err := s.DB.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewConflict("user is already a member of this group")
		}
		return nil, err
	}
	member.User = user
	return &member, nil
}

// AddMemberByEmail resolves the user by normalized email first.
func (s *GroupService) AddMemberByEmail(groupID uint, email string) (*models.GroupMember, error) {
	var user models.User
	err := s.DB.Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFound("no user found with that email")
	}
	if err != nil {
		return nil, err
	}
	return s.AddMember(groupID, user.ID)
}

// RemoveMember soft-deletes a membership. The current owner cannot be
// removed; ownership must be transferred first.
func (s *GroupService) RemoveMember(groupID, userID uint) error {
	group, err := s.GetByID(groupID)
	if err != nil {
		return err
	}
	if group.OwnerID == userID {
		return NewValidation("cannot remove the group owner; transfer ownership first")
	}
	var member models.GroupMember
	err = s.DB.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFound("membership not found")
	}
	if err != nil {
		return err
	}
	return s.DB.Delete(&member).Error
}

// TransferOwnership reassigns the group's owner. Only the current owner
// may transfer, the target must already be an active member, and
// self-transfer is rejected. Membership rows are untouched: the previous
// owner stays a regular member.
func (s *GroupService) TransferOwnership(groupID, newOwnerID, requestedBy uint) (*models.Group, error) {
	group, err := s.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != requestedBy {
		return nil, NewForbidden("only the group owner can transfer ownership")
	}
	if newOwnerID == requestedBy {
		return nil, NewValidation("cannot transfer ownership to yourself")
	}

	var member models.GroupMember
	err = s.DB.Where("group_id = ? AND user_id = ?", groupID, newOwnerID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewValidation("new owner must be an active member of the group")
	}
	if err != nil {
		return nil, err
	}

	group.OwnerID = newOwnerID
	if err := s.DB.Save(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// SoftDelete tombstones a group.
func (s *GroupService) SoftDelete(groupID uint) error {
	group, err := s.GetByID(groupID)
	if err != nil {
		return err
	}
	return s.DB.Delete(group).Error
}

// NormalizeEmail lower-cases and trims an address; all lookups and
// inserts go through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
