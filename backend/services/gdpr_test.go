package services

import (
	"testing"

	"dailytracker/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestExportIncludesSoftDeletedRows(t *testing.T) {
	db := newTestDB(t)
	svc := NewGDPRService(db)
	entries := NewEntryService(db)

	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")
	kept := seedEntry(t, db, user, group, models.SectionHealth, daysAgo(0), "keep")
	deleted := seedEntry(t, db, user, group, models.SectionHappiness, daysAgo(0), "gone")
	require.NoError(t, entries.SoftDelete(deleted.ID))

	export, err := svc.Export(user.ID)
	require.NoError(t, err)

	require.Len(t, export.Entries, 2)
	ids := []uint{export.Entries[0].ID, export.Entries[1].ID}
	assert.Contains(t, ids, kept.ID)
	assert.Contains(t, ids, deleted.ID)

	assert.Equal(t, user.Email, export.UserProfile["email"])
	assert.Equal(t, 2, export.DataSummary["total_entries"])
	assert.Equal(t, 1, export.DataSummary["total_groups"])
}

func TestExportUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewGDPRService(db)

	_, err := svc.Export(999)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestDeleteAccountRequiresConfirmation(t *testing.T) {
	db := newTestDB(t)
	svc := NewGDPRService(db)
	user := seedUser(t, db, "alice@example.com")

	_, err := svc.DeleteAccount(user.ID, false)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Contains(t, err.Error(), "confirm")

	// Nothing was touched.
	assert.NoError(t, db.First(&models.User{}, user.ID).Error)
}

func TestDeleteAccountErasesAndAnonymizes(t *testing.T) {
	db := newTestDB(t)
	svc := NewGDPRService(db)
	audit := NewAuditService(db)

	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")
	entry := seedEntry(t, db, user, group, models.SectionHealth, daysAgo(0), "a")
	require.NoError(t, audit.LogEvent(user.ID, "login", "user", user.ID, nil, "127.0.0.1"))

	summary, err := svc.DeleteAccount(user.ID, true)
	require.NoError(t, err)
	assert.Contains(t, summary, "permanently deleted")

	// Hard deletes: rows are gone even under Unscoped.
	assert.ErrorIs(t, db.Unscoped().First(&models.User{}, user.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.Unscoped().First(&models.Entry{}, entry.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.Unscoped().Where("user_id = ?", user.ID).
		First(&models.GroupMember{}).Error, gorm.ErrRecordNotFound)

	// The audit trail survives, anonymized.
	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AnonymousUserID, logs[0].UserID)
	assert.Equal(t, "login", logs[0].Action)
}
