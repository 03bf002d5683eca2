package services

import (
	"testing"

	"dailytracker/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	user := seedUser(t, db, "alice@example.com")
	other := seedUser(t, db, "bob@example.com")

	n1, err := svc.Create(user.ID, models.NotificationIncompleteDay, "Reminder", "2 sections left today")
	require.NoError(t, err)
	_, err = svc.Create(user.ID, models.NotificationStreakMilestone, "Milestone", "7 day streak")
	require.NoError(t, err)

	list, err := svc.ListForUser(user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].IsRead)

	// Another user cannot mark someone else's notification.
	_, err = svc.MarkRead(n1.ID, other.ID)
	assert.True(t, IsKind(err, KindNotFound))

	read, err := svc.MarkRead(n1.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	updated, err := svc.MarkAllRead(user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)

	updated, err = svc.MarkAllRead(user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, updated)
}
