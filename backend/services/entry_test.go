package services

import (
	"strings"
	"testing"

	"dailytracker/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntryTrimsAndNormalizes(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	entry, err := svc.Create(user.ID, group.ID, "  Health ", "  ran 5k  ", nil)
	require.NoError(t, err)
	assert.Equal(t, models.SectionHealth, entry.Section)
	assert.Equal(t, "ran 5k", entry.Content)
	assert.Equal(t, models.Today(), models.DateOnly(entry.EntryDate))
	assert.Equal(t, 0, entry.EditCount)
}

func TestCreateEntryValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	_, err := svc.Create(user.ID, group.ID, "weather", "content", nil)
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.Create(user.ID, group.ID, "health", "   ", nil)
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.Create(user.ID, group.ID, "health", strings.Repeat("a", MaxEntryContentLength+1), nil)
	assert.True(t, IsKind(err, KindValidation))

	tomorrow := daysAgo(-1)
	_, err = svc.Create(user.ID, group.ID, "health", "content", &tomorrow)
	assert.True(t, IsKind(err, KindValidation))
}

func TestCreateEntryDuplicateSlot(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	_, err := svc.Create(user.ID, group.ID, "health", "first", nil)
	require.NoError(t, err)

	_, err = svc.Create(user.ID, group.ID, "health", "second", nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Contains(t, err.Error(), "already exists")

	// A different section on the same day is a different slot.
	_, err = svc.Create(user.ID, group.ID, "happiness", "second", nil)
	assert.NoError(t, err)
}

func TestUpdateEntryEditCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	entry, err := svc.Create(user.ID, group.ID, "health", "original", nil)
	require.NoError(t, err)

	// Same content after trimming: no edit counted.
	same := "  original  "
	updated, err := svc.Update(entry.ID, &same, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.EditCount)

	changed := "revised"
	updated, err = svc.Update(entry.ID, &changed, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.EditCount)
	assert.Equal(t, "revised", updated.Content)

	// Section-only change does not count as an edit.
	section := "happiness"
	updated, err = svc.Update(entry.ID, nil, &section)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.EditCount)
	assert.Equal(t, models.SectionHappiness, updated.Section)
}

func TestUpdateEntryNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)

	content := "content"
	_, err := svc.Update(999, &content, nil)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestSoftDeleteFreesSlot(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	entry, err := svc.Create(user.ID, group.ID, "health", "first", nil)
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(entry.ID))

	// Deleting again is a not-found, not a no-op.
	assert.True(t, IsKind(svc.SoftDelete(entry.ID), KindNotFound))

	// The slot is writable again.
	_, err = svc.Create(user.ID, group.ID, "health", "second", nil)
	assert.NoError(t, err)
}

func TestRestoreEntry(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	other := seedUser(t, db, "bob@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	entry, err := svc.Create(user.ID, group.ID, "health", "first", nil)
	require.NoError(t, err)

	// Not deleted yet.
	_, err = svc.Restore(entry.ID, user.ID)
	assert.True(t, IsKind(err, KindValidation))

	require.NoError(t, svc.SoftDelete(entry.ID))

	// Someone else's entry looks like it does not exist.
	_, err = svc.Restore(entry.ID, other.ID)
	assert.True(t, IsKind(err, KindNotFound))

	restored, err := svc.Restore(entry.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, restored.DeletedAt.Valid)

	var active models.Entry
	require.NoError(t, db.First(&active, entry.ID).Error)
}

func TestRestoreEntryRefilledSlot(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	entry, err := svc.Create(user.ID, group.ID, "health", "first", nil)
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(entry.ID))

	_, err = svc.Create(user.ID, group.ID, "health", "second", nil)
	require.NoError(t, err)

	_, err = svc.Restore(entry.ID, user.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateOrUpdateUpserts(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	first, err := svc.CreateOrUpdate(user.ID, group.ID, "health", "first", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.EditCount)

	second, err := svc.CreateOrUpdate(user.ID, group.ID, "health", "second", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "second", second.Content)
	assert.Equal(t, 1, second.EditCount)

	var count int64
	db.Model(&models.Entry{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestGetDailyProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	groupA := seedGroup(t, db, user, "Group A")
	groupB := seedGroup(t, db, user, "Group B")

	seedEntry(t, db, user, groupA, models.SectionHealth, models.Today(), "gym")
	seedEntry(t, db, user, groupA, models.SectionHappiness, models.Today(), "walk")
	// Same section in another group: counts once across groups.
	seedEntry(t, db, user, groupB, models.SectionHealth, models.Today(), "gym again")

	progress, err := svc.GetDailyProgress(user.ID, models.Today(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.TotalEntries)
	assert.Equal(t, 2, progress.CompletedSections)
	assert.InDelta(t, 66.66, progress.ProgressPercentage, 0.1)

	scoped, err := svc.GetDailyProgress(user.ID, models.Today(), &groupB.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, scoped.CompletedSections)
}

func TestCalculateStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	// today, yesterday, then a gap before day 3.
	seedEntry(t, db, user, group, models.SectionHealth, daysAgo(0), "a")
	seedEntry(t, db, user, group, models.SectionHappiness, daysAgo(1), "b")
	seedEntry(t, db, user, group, models.SectionHealth, daysAgo(3), "c")

	streak, err := svc.CalculateStreak(user.ID, &group.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestCalculateStreakRequiresToday(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	seedEntry(t, db, user, group, models.SectionHealth, daysAgo(1), "a")
	seedEntry(t, db, user, group, models.SectionHealth, daysAgo(2), "b")

	streak, err := svc.CalculateStreak(user.ID, &group.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestCompletionStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	for _, day := range []int{0, 1} {
		for _, sec := range []string{models.SectionHealth, models.SectionHappiness, models.SectionHela} {
			seedEntry(t, db, user, group, sec, daysAgo(day), "done")
		}
	}

	result, err := svc.CompletionStreak(user.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Streak)
	require.NotNil(t, result.LastCompleteDate)
	assert.Equal(t, models.Today(), *result.LastCompleteDate)
}

func TestCompletionStreakToleratesIncompleteToday(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	// Today only two sections; yesterday and the day before complete.
	seedEntry(t, db, user, group, models.SectionHealth, daysAgo(0), "x")
	seedEntry(t, db, user, group, models.SectionHappiness, daysAgo(0), "x")
	for _, day := range []int{1, 2} {
		for _, sec := range []string{models.SectionHealth, models.SectionHappiness, models.SectionHela} {
			seedEntry(t, db, user, group, sec, daysAgo(day), "done")
		}
	}

	result, err := svc.CompletionStreak(user.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Streak)
	require.NotNil(t, result.LastCompleteDate)
	assert.Equal(t, daysAgo(1), *result.LastCompleteDate)
}

func TestCompletionStreakEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	result, err := svc.CompletionStreak(user.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Streak)
	assert.Nil(t, result.LastCompleteDate)
}

func TestHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	for _, sec := range []string{models.SectionHealth, models.SectionHappiness, models.SectionHela} {
		seedEntry(t, db, user, group, sec, daysAgo(0), "done")
	}
	seedEntry(t, db, user, group, models.SectionHela, daysAgo(1), "partial")

	history, err := svc.History(user.ID, group.ID, 2)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, models.Today(), history[0].Date)
	assert.True(t, history[0].IsComplete)
	assert.Equal(t, []string{models.SectionHealth, models.SectionHappiness, models.SectionHela},
		history[0].CompletedSections)

	assert.False(t, history[1].IsComplete)
	assert.Equal(t, []string{models.SectionHela}, history[1].CompletedSections)

	assert.Empty(t, history[2].CompletedSections)
}

func TestHistoryValidatesWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)

	_, err := svc.History(1, 1, 0)
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.History(1, 1, MaxHistoryDays+1)
	assert.True(t, IsKind(err, KindValidation))
}

func TestListGroupEntriesFutureDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	tomorrow := daysAgo(-1)
	_, err := svc.ListGroupEntries(group.ID, &tomorrow, nil)
	assert.True(t, IsKind(err, KindValidation))
}

func TestListGroupEntriesExcludesDeleted(t *testing.T) {
	db := newTestDB(t)
	svc := NewEntryService(db)
	user := seedUser(t, db, "alice@example.com")
	group := seedGroup(t, db, user, "Morning Club")

	keep := seedEntry(t, db, user, group, models.SectionHealth, models.Today(), "keep")
	gone := seedEntry(t, db, user, group, models.SectionHappiness, models.Today(), "gone")
	require.NoError(t, svc.SoftDelete(gone.ID))

	entries, err := svc.ListGroupEntries(group.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, keep.ID, entries[0].ID)
	assert.Equal(t, user.Email, entries[0].User.Email)
}
