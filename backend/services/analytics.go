package services

import (
	"errors"
	"time"

	"dailytracker/backend/models"

	"gorm.io/gorm"
)

// AnalyticsService aggregates entry activity for a group or the whole
// system, and carries the moderation flag/unflag operations because
// those are audited the same way.
type AnalyticsService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewAnalyticsService(db *gorm.DB, audit *AuditService) *AnalyticsService {
	return &AnalyticsService{DB: db, Audit: audit}
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type DailyActivity struct {
	Date    time.Time `json:"date"`
	Entries int64     `json:"entries"`
}

type GroupAnalytics struct {
	GroupID       uint            `json:"group_id"`
	Period        Period          `json:"period"`
	MemberCount   int64           `json:"member_count"`
	TotalEntries  int64           `json:"total_entries"`
	ActiveUsers   int64           `json:"active_users"`
	AvgStreak     float64         `json:"avg_streak"`
	DailyActivity []DailyActivity `json:"daily_activity"`
}

// window defaults to the last 30 days through today.
func window(start, end *time.Time) (time.Time, time.Time) {
	e := models.Today()
	if end != nil {
		e = models.DateOnly(*end)
	}
	s := e.AddDate(0, 0, -30)
	if start != nil {
		s = models.DateOnly(*start)
	}
	return s, e
}

// GetGroupAnalytics aggregates a group's activity in the window.
// AvgStreak is the historical name for "average active entries per
// contributing user in the group" and is not a day-streak average.
func (s *AnalyticsService) GetGroupAnalytics(groupID uint, start, end *time.Time) (*GroupAnalytics, error) {
	var group models.Group
	if err := s.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("group not found")
		}
		return nil, err
	}
	from, to := window(start, end)

	out := GroupAnalytics{GroupID: groupID, Period: Period{Start: from, End: to}}

	if err := s.DB.Model(&models.GroupMember{}).Where("group_id = ?", groupID).
		Count(&out.MemberCount).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Entry{}).
		Where("group_id = ? AND entry_date BETWEEN ? AND ?", groupID, from, to).
		Count(&out.TotalEntries).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Entry{}).
		Where("group_id = ? AND entry_date BETWEEN ? AND ?", groupID, from, to).
		Distinct("user_id").Count(&out.ActiveUsers).Error; err != nil {
		return nil, err
	}

	// Mean entry count across users who ever contributed to the group.
	var avg *float64
	err := s.DB.Raw(`SELECT AVG(cnt) FROM (
			SELECT COUNT(*) AS cnt FROM entries
			WHERE group_id = ? AND deleted_at IS NULL
			GROUP BY user_id
		) per_user`, groupID).Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	if avg != nil {
		out.AvgStreak = *avg
	}

	rows, err := s.DB.Model(&models.Entry{}).
		Select("entry_date AS date, COUNT(*) AS entries").
		Where("group_id = ? AND entry_date BETWEEN ? AND ?", groupID, from, to).
		Group("entry_date").Order("entry_date").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d DailyActivity
		if err := rows.Scan(&d.Date, &d.Entries); err != nil {
			return nil, err
		}
		d.Date = models.DateOnly(d.Date)
		out.DailyActivity = append(out.DailyActivity, d)
	}

	return &out, nil
}

type GlobalAnalytics struct {
	Period         Period  `json:"period"`
	TotalUsers     int64   `json:"total_users"`
	TotalGroups    int64   `json:"total_groups"`
	TotalEntries   int64   `json:"total_entries"`
	NewUsers       int64   `json:"new_users"`
	ActiveUsers    int64   `json:"active_users"`
	ActiveGroups   int64   `json:"active_groups"`
	EngagementRate float64 `json:"engagement_rate"`
}

// GetGlobalAnalytics is the system-wide counterpart; super-admin only at
// the gate.
func (s *AnalyticsService) GetGlobalAnalytics(start, end *time.Time) (*GlobalAnalytics, error) {
	from, to := window(start, end)
	out := GlobalAnalytics{Period: Period{Start: from, End: to}}

	if err := s.DB.Model(&models.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Group{}).Count(&out.TotalGroups).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Entry{}).
		Where("entry_date BETWEEN ? AND ?", from, to).
		Count(&out.TotalEntries).Error; err != nil {
		return nil, err
	}
	// created_at is a timestamp; include the whole end day.
	if err := s.DB.Model(&models.User{}).
		Where("created_at BETWEEN ? AND ?", from, to.AddDate(0, 0, 1)).
		Count(&out.NewUsers).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Entry{}).
		Where("entry_date BETWEEN ? AND ?", from, to).
		Distinct("user_id").Count(&out.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Entry{}).
		Where("entry_date BETWEEN ? AND ?", from, to).
		Distinct("group_id").Count(&out.ActiveGroups).Error; err != nil {
		return nil, err
	}

	if out.TotalUsers > 0 {
		out.EngagementRate = float64(out.ActiveUsers) / float64(out.TotalUsers) * 100
	}
	return &out, nil
}

// FlagEntry marks an active entry for moderation. Always audited.
func (s *AnalyticsService) FlagEntry(entryID uint, reason string, flaggedBy uint) (*models.Entry, error) {
	var entry models.Entry
	if err := s.DB.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("entry not found")
		}
		return nil, err
	}
	entry.IsFlagged = true
	entry.FlaggedReason = reason
	if err := s.DB.Save(&entry).Error; err != nil {
		return nil, err
	}

	s.Audit.LogEvent(flaggedBy, "flag_entry", "entry", entryID,
		map[string]interface{}{"reason": reason}, "")
	return &entry, nil
}

// UnflagEntry clears a moderation flag. Always audited.
func (s *AnalyticsService) UnflagEntry(entryID uint, unflaggedBy uint) (*models.Entry, error) {
	var entry models.Entry
	if err := s.DB.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("entry not found")
		}
		return nil, err
	}
	entry.IsFlagged = false
	entry.FlaggedReason = ""
	if err := s.DB.Save(&entry).Error; err != nil {
		return nil, err
	}

	s.Audit.LogEvent(unflaggedBy, "unflag_entry", "entry", entryID, nil, "")
	return &entry, nil
}
