package services

import (
	"strings"
	"testing"

	"dailytracker/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupAddsOwnerAsMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "owner@example.com")

	group, err := svc.Create("  Morning Club  ", "early risers", "", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Club", group.Name)
	assert.Equal(t, models.DefaultTimezone, group.Timezone)
	assert.Equal(t, owner.ID, group.OwnerID)

	members, err := svc.ListMembers(group.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].UserID)
}

func TestCreateGroupValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "owner@example.com")

	_, err := svc.Create("   ", "", "", owner.ID)
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.Create(strings.Repeat("x", MaxGroupNameLength+1), "", "", owner.ID)
	assert.True(t, IsKind(err, KindValidation))
}

func TestAddMemberDuplicateConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "owner@example.com")
	member := seedUser(t, db, "member@example.com")
	group := seedGroup(t, db, owner, "Morning Club")

	_, err := svc.AddMember(group.ID, member.ID)
	require.NoError(t, err)

	_, err = svc.AddMember(group.ID, member.ID)
	assert.True(t, IsKind(err, KindConflict))
}

func TestAddMemberByEmailNormalizes(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "owner@example.com")
	member := seedUser(t, db, "bob@example.com")
	group := seedGroup(t, db, owner, "Morning Club")

	added, err := svc.AddMemberByEmail(group.ID, "  Bob@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, member.ID, added.UserID)

	_, err = svc.AddMemberByEmail(group.ID, "nobody@example.com")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestRemoveMemberRejectsOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "owner@example.com")
	group := seedGroup(t, db, owner, "Morning Club")

	err := svc.RemoveMember(group.ID, owner.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Contains(t, err.Error(), "transfer ownership")
}

func TestRemoveMemberThenRejoin(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "owner@example.com")
	member := seedUser(t, db, "member@example.com")
	group := seedGroup(t, db, owner, "Morning Club")
	seedMember(t, db, group, member)

	require.NoError(t, svc.RemoveMember(group.ID, member.ID))

	err := svc.RemoveMember(group.ID, member.ID)
	assert.True(t, IsKind(err, KindNotFound))

	// The partial unique index only covers active rows, so rejoining
	// works.
	_, err = svc.AddMember(group.ID, member.ID)
	assert.NoError(t, err)
}

func TestTransferOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "owner@example.com")
	member := seedUser(t, db, "member@example.com")
	outsider := seedUser(t, db, "outsider@example.com")
	group := seedGroup(t, db, owner, "Morning Club")
	seedMember(t, db, group, member)

	_, err := svc.TransferOwnership(group.ID, member.ID, member.ID)
	assert.True(t, IsKind(err, KindForbidden))

	_, err = svc.TransferOwnership(group.ID, owner.ID, owner.ID)
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.TransferOwnership(group.ID, outsider.ID, owner.ID)
	assert.True(t, IsKind(err, KindValidation))

	updated, err := svc.TransferOwnership(group.ID, member.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, updated.OwnerID)

	// The previous owner keeps a regular membership.
	var remaining models.GroupMember
	err = db.Where("group_id = ? AND user_id = ?", group.ID, owner.ID).First(&remaining).Error
	assert.NoError(t, err)
}

func TestUserGroupsExcludesDeletedGroups(t *testing.T) {
	db := newTestDB(t)
	svc := NewGroupService(db)
	owner := seedUser(t, db, "owner@example.com")
	keep := seedGroup(t, db, owner, "Keep")
	gone := seedGroup(t, db, owner, "Gone")

	require.NoError(t, svc.SoftDelete(gone.ID))

	groups, err := svc.UserGroups(owner.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, keep.ID, groups[0].ID)
}
