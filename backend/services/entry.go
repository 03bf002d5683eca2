package services

import (
	"errors"
	"strings"
	"time"

	"dailytracker/backend/models"

	"gorm.io/gorm"
)

// MaxEntryContentLength caps a single entry's content.
const MaxEntryContentLength = 5000

// MaxHistoryDays bounds the analytics/history lookback window.
const MaxHistoryDays = 365

// DefaultHistoryDays is used when the caller does not pass one.
const DefaultHistoryDays = 30

// EntryService owns the daily section entries: one active row per
// (user, group, section, day), soft-deleted rows excluded everywhere.
type EntryService struct {
	DB *gorm.DB
}

func NewEntryService(db *gorm.DB) *EntryService {
	return &EntryService{DB: db}
}

// NormalizeSection lower-cases and trims a section name and validates it.
func NormalizeSection(section string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(section))
	if !models.ValidSection(s) {
		return "", NewValidation("section must be one of: health, happiness, hela")
	}
	return s, nil
}

func normalizeContent(content string) (string, error) {
	c := strings.TrimSpace(content)
	if c == "" {
		return "", NewValidation("entry content must not be empty")
	}
	if len(c) > MaxEntryContentLength {
		return "", NewValidation("entry content must be at most 5000 characters")
	}
	return c, nil
}

// Create inserts a new entry. entryDate defaults to today and must not be
// in the future. A second active entry for the same (user, group,
// section, day) is a validation error, whether detected by the pre-check
// or by the unique constraint under a concurrent create.
func (s *EntryService) Create(userID, groupID uint, section, content string, entryDate *time.Time) (*models.Entry, error) {
	sec, err := NormalizeSection(section)
	if err != nil {
		return nil, err
	}
	text, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	day := models.Today()
	if entryDate != nil {
		day = models.DateOnly(*entryDate)
	}
	if day.After(models.Today()) {
		return nil, NewValidation("cannot create entries for future dates")
	}

	var existing models.Entry
	err = s.DB.Where("user_id = ? AND group_id = ? AND section = ? AND entry_date = ?",
		userID, groupID, sec, day).First(&existing).Error
	if err == nil {
		return nil, NewValidation("entry already exists for this section and date")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry := models.Entry{
		UserID:    userID,
		GroupID:   groupID,
		Section:   sec,
		Content:   text,
		EntryDate: day,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return nil, translateEntryCreate(err)
	}
	return &entry, nil
}

// Update mutates an active entry. A genuine content change increments
// EditCount by exactly one; changing only the section does not.
func (s *EntryService) Update(entryID uint, content, section *string) (*models.Entry, error) {
	var entry models.Entry
	if err := s.DB.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("entry not found")
		}
		return nil, err
	}

	if content != nil {
		text, err := normalizeContent(*content)
		if err != nil {
			return nil, err
		}
		if text != entry.Content {
			entry.Content = text
			entry.EditCount++
		}
	}
	if section != nil {
		sec, err := NormalizeSection(*section)
		if err != nil {
			return nil, err
		}
		entry.Section = sec
	}

	if err := s.DB.Save(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// SoftDelete tombstones an active entry. Deleting a missing or already
// deleted entry is a NotFoundError.
func (s *EntryService) SoftDelete(entryID uint) error {
	var entry models.Entry
	if err := s.DB.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFound("entry not found")
		}
		return err
	}
	return s.DB.Delete(&entry).Error
}

// Restore un-deletes an entry. Only the original owner may restore, and
// the entry must currently be soft-deleted.
func (s *EntryService) Restore(entryID, userID uint) (*models.Entry, error) {
	var entry models.Entry
	if err := s.DB.Unscoped().First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("entry not found")
		}
		return nil, err
	}
	if entry.UserID != userID {
		return nil, NewNotFound("entry not found")
	}
	if !entry.DeletedAt.Valid {
		return nil, NewValidation("entry is not deleted")
	}

	// The slot may have been refilled while this entry was deleted.
	var conflict models.Entry
	err := s.DB.Where("user_id = ? AND group_id = ? AND section = ? AND entry_date = ?",
		entry.UserID, entry.GroupID, entry.Section, entry.EntryDate).First(&conflict).Error
	if err == nil {
		return nil, NewValidation("entry already exists for this section and date")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.DB.Unscoped().Model(&entry).Update("deleted_at", nil).Error; err != nil {
		return nil, translateEntryCreate(err)
	}
	entry.DeletedAt = gorm.DeletedAt{}
	return &entry, nil
}

// CreateOrUpdate is the upsert convenience behind POST /api/entries: it
// updates the existing active entry for the tuple, or creates one.
func (s *EntryService) CreateOrUpdate(userID, groupID uint, section, content string, entryDate *time.Time) (*models.Entry, error) {
	sec, err := NormalizeSection(section)
	if err != nil {
		return nil, err
	}
	day := models.Today()
	if entryDate != nil {
		day = models.DateOnly(*entryDate)
	}
	if day.After(models.Today()) {
		return nil, NewValidation("cannot create entries for future dates")
	}

	var existing models.Entry
	err = s.DB.Where("user_id = ? AND group_id = ? AND section = ? AND entry_date = ?",
		userID, groupID, sec, day).First(&existing).Error
	if err == nil {
		return s.Update(existing.ID, &content, nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.Create(userID, groupID, sec, content, &day)
}

// ListToday returns the user's active entries for today, optionally
// scoped to one group.
func (s *EntryService) ListToday(userID uint, groupID *uint) ([]models.Entry, error) {
	query := s.DB.Where("user_id = ? AND entry_date = ?", userID, models.Today())
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	var entries []models.Entry
	err := query.Find(&entries).Error
	return entries, err
}

// ListGroupEntries returns a group's active entries with their authors,
// optionally filtered by date and user. Future dates are rejected.
func (s *EntryService) ListGroupEntries(groupID uint, date *time.Time, userID *uint) ([]models.Entry, error) {
	query := s.DB.Preload("User").Where("group_id = ?", groupID)
	if date != nil {
		day := models.DateOnly(*date)
		if day.After(models.Today()) {
			return nil, NewValidation("cannot query entries for future dates")
		}
		query = query.Where("entry_date = ?", day)
	}
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	var entries []models.Entry
	err := query.Order("entry_date DESC, id ASC").Find(&entries).Error
	return entries, err
}

// DailyProgress summarizes one user's day.
type DailyProgress struct {
	Date               time.Time      `json:"date"`
	TotalEntries       int            `json:"total_entries"`
	CompletedSections  int            `json:"completed_sections"`
	TotalSections      int            `json:"total_sections"`
	ProgressPercentage float64        `json:"progress_percentage"`
	Entries            []models.Entry `json:"entries"`
}

// GetDailyProgress counts distinct sections with an active entry on the
// given day. A section logged in two groups still counts once.
func (s *EntryService) GetDailyProgress(userID uint, date time.Time, groupID *uint) (*DailyProgress, error) {
	day := models.DateOnly(date)
	query := s.DB.Where("user_id = ? AND entry_date = ?", userID, day)
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	var entries []models.Entry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	sections := make(map[string]bool)
	for _, e := range entries {
		sections[e.Section] = true
	}

	completed := len(sections)
	return &DailyProgress{
		Date:               day,
		TotalEntries:       len(entries),
		CompletedSections:  completed,
		TotalSections:      models.TotalSections,
		ProgressPercentage: float64(completed) / float64(models.TotalSections) * 100,
		Entries:            entries,
	}, nil
}

// CalculateStreak counts consecutive days, walking backward from today,
// with at least one active entry in any section. A missing today zeroes
// the streak immediately; this is intentionally stricter than
// CompletionStreak and the two must not be unified.
func (s *EntryService) CalculateStreak(userID uint, groupID *uint) (int, error) {
	query := s.DB.Model(&models.Entry{}).Where("user_id = ?", userID)
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	var dates []time.Time
	if err := query.Distinct("entry_date").Pluck("entry_date", &dates).Error; err != nil {
		return 0, err
	}

	days := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		days[models.DateOnly(d)] = true
	}

	streak := 0
	check := models.Today()
	for days[check] {
		streak++
		check = check.AddDate(0, 0, -1)
	}
	return streak, nil
}

// StreakResult is the wire shape of GET /api/analytics/streak.
type StreakResult struct {
	Streak           int        `json:"streak"`
	LastCompleteDate *time.Time `json:"last_complete_date,omitempty"`
}

// CompletionStreak counts consecutive days on which all three sections
// were logged. Unlike CalculateStreak it tolerates an incomplete today by
// starting the walk at yesterday.
func (s *EntryService) CompletionStreak(userID, groupID uint) (*StreakResult, error) {
	rows, err := s.completeDays(userID, groupID, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &StreakResult{Streak: 0}, nil
	}

	streak := 0
	check := models.Today()
	for _, d := range rows {
		if d.Equal(check) {
			streak++
			check = check.AddDate(0, 0, -1)
		} else if d.Equal(check.AddDate(0, 0, -1)) {
			streak++
			check = d.AddDate(0, 0, -1)
		} else {
			break
		}
	}

	last := rows[0]
	return &StreakResult{Streak: streak, LastCompleteDate: &last}, nil
}

// completeDays returns the days (newest first) on which the user logged
// all three sections in the group, optionally bounded to since.
func (s *EntryService) completeDays(userID, groupID uint, since *time.Time) ([]time.Time, error) {
	query := s.DB.Model(&models.Entry{}).
		Select("entry_date").
		Where("user_id = ? AND group_id = ?", userID, groupID)
	if since != nil {
		query = query.Where("entry_date >= ?", models.DateOnly(*since))
	}
	var dates []time.Time
	err := query.Group("entry_date").
		Having("COUNT(DISTINCT section) = ?", models.TotalSections).
		Order("entry_date DESC").
		Pluck("entry_date", &dates).Error
	if err != nil {
		return nil, err
	}
	for i := range dates {
		dates[i] = models.DateOnly(dates[i])
	}
	return dates, nil
}

// HistoryDay is one row of GET /api/analytics/history.
type HistoryDay struct {
	Date              time.Time `json:"date"`
	CompletedSections []string  `json:"completed_sections"`
	IsComplete        bool      `json:"is_complete"`
}

// History returns the last `days` days (most recent first) with the
// distinct sections the user completed in the group on each.
func (s *EntryService) History(userID, groupID uint, days int) ([]HistoryDay, error) {
	if days < 1 {
		return nil, NewValidation("days parameter must be at least 1")
	}
	if days > MaxHistoryDays {
		return nil, NewValidation("days parameter cannot exceed 365")
	}

	start := models.Today().AddDate(0, 0, -days)
	var entries []models.Entry
	err := s.DB.Where("user_id = ? AND group_id = ? AND entry_date >= ?", userID, groupID, start).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	byDate := make(map[time.Time]map[string]bool)
	for _, e := range entries {
		day := models.DateOnly(e.EntryDate)
		if byDate[day] == nil {
			byDate[day] = make(map[string]bool)
		}
		byDate[day][e.Section] = true
	}

	result := make([]HistoryDay, 0, days+1)
	for i := 0; i <= days; i++ {
		day := models.Today().AddDate(0, 0, -i)
		sections := make([]string, 0, models.TotalSections)
		for _, sec := range []string{models.SectionHealth, models.SectionHappiness, models.SectionHela} {
			if byDate[day][sec] {
				sections = append(sections, sec)
			}
		}
		result = append(result, HistoryDay{
			Date:              day,
			CompletedSections: sections,
			IsComplete:        len(sections) == models.TotalSections,
		})
	}
	return result, nil
}
