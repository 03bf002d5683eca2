package controllers

import (
	"time"

	"dailytracker/backend/middleware"
	"dailytracker/backend/models"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB        *gorm.DB
	Entries   *services.EntryService
	Analytics *services.AnalyticsService
	Gate      *services.Gate
}

func NewAnalyticsController(db *gorm.DB, entries *services.EntryService, analytics *services.AnalyticsService, gate *services.Gate) *AnalyticsController {
	return &AnalyticsController{DB: db, Entries: entries, Analytics: analytics, Gate: gate}
}

// Streak returns the caller's completion streak in a group: consecutive
// days with all three sections filled, counting back from today or
// yesterday.
func (ac *AnalyticsController) Streak(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID := uint(c.QueryInt("group_id"))
	if groupID == 0 {
		return utils.ServiceError(c, services.NewValidation("group_id is required"))
	}
	if err := ac.Gate.RequireMember(p, groupID); err != nil {
		return utils.ServiceError(c, err)
	}

	userID := p.UserID
	if raw := uint(c.QueryInt("user_id")); raw != 0 {
		if err := ac.Gate.RequireMemberRead(p, groupID, raw); err != nil {
			return utils.ServiceError(c, err)
		}
		userID = raw
	}

	result, err := ac.Entries.CompletionStreak(userID, groupID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// ActivityStreak is the looser counter: consecutive days with at least
// one entry in any section, anchored on today.
func (ac *AnalyticsController) ActivityStreak(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var groupID *uint
	if raw := uint(c.QueryInt("group_id")); raw != 0 {
		if err := ac.Gate.RequireMember(p, raw); err != nil {
			return utils.ServiceError(c, err)
		}
		groupID = &raw
	}

	streak, err := ac.Entries.CalculateStreak(p.UserID, groupID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"streak": streak})
}

// Progress returns how many of the day's sections the caller has filled.
func (ac *AnalyticsController) Progress(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	date := models.Today()
	if d, err := parseDateQuery(c, "date"); err != nil {
		return utils.ServiceError(c, err)
	} else if d != nil {
		date = *d
	}

	var groupID *uint
	if raw := uint(c.QueryInt("group_id")); raw != 0 {
		if err := ac.Gate.RequireMember(p, raw); err != nil {
			return utils.ServiceError(c, err)
		}
		groupID = &raw
	}

	progress, err := ac.Entries.GetDailyProgress(p.UserID, date, groupID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, progress)
}

// History returns a per-day completion breakdown over a trailing window,
// most recent day first.
func (ac *AnalyticsController) History(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID := uint(c.QueryInt("group_id"))
	if groupID == 0 {
		return utils.ServiceError(c, services.NewValidation("group_id is required"))
	}
	if err := ac.Gate.RequireMember(p, groupID); err != nil {
		return utils.ServiceError(c, err)
	}

	userID := p.UserID
	if raw := uint(c.QueryInt("user_id")); raw != 0 {
		if err := ac.Gate.RequireMemberRead(p, groupID, raw); err != nil {
			return utils.ServiceError(c, err)
		}
		userID = raw
	}

	days := c.QueryInt("days", services.DefaultHistoryDays)
	history, err := ac.Entries.History(userID, groupID, days)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, history)
}

func parseWindow(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	start, err := parseDateQuery(c, "start_date")
	if err != nil {
		return nil, nil, err
	}
	end, err := parseDateQuery(c, "end_date")
	if err != nil {
		return nil, nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, services.NewValidation("end_date must not be before start_date")
	}
	return start, end, nil
}

// GroupAnalytics returns aggregate activity for one group; members only.
func (ac *AnalyticsController) GroupAnalytics(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID <= 0 {
		return utils.BadRequest(c, "invalid group id")
	}
	if err := ac.Gate.RequireMember(p, uint(groupID)); err != nil {
		return utils.ServiceError(c, err)
	}

	start, end, err := parseWindow(c)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	analytics, err := ac.Analytics.GetGroupAnalytics(uint(groupID), start, end)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, analytics)
}

// GlobalAnalytics returns platform-wide aggregates; super admin only.
func (ac *AnalyticsController) GlobalAnalytics(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}
	if err := ac.Gate.RequireSuperAdmin(p, "analytics:global"); err != nil {
		return utils.ServiceError(c, err)
	}

	start, end, err := parseWindow(c)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	analytics, err := ac.Analytics.GetGlobalAnalytics(start, end)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, analytics)
}
