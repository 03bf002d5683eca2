package controllers

import (
	"errors"
	"time"

	"dailytracker/backend/middleware"
	"dailytracker/backend/models"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EntryController struct {
	DB      *gorm.DB
	Entries *services.EntryService
	Gate    *services.Gate
	Audit   *services.AuditService
}

func NewEntryController(db *gorm.DB, entries *services.EntryService, gate *services.Gate, audit *services.AuditService) *EntryController {
	return &EntryController{DB: db, Entries: entries, Gate: gate, Audit: audit}
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter.
func parseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, services.NewValidation(name + " must be in YYYY-MM-DD format")
	}
	d := models.DateOnly(t)
	return &d, nil
}

type createEntryRequest struct {
	GroupID   uint   `json:"group_id"`
	Section   string `json:"section"`
	Content   string `json:"content"`
	EntryDate string `json:"entry_date"`
}

// [+] Create godoc
// @Summary Create or update a daily entry
// @Description Writes the caller's entry for a section and date. Writing
// the same slot again updates the existing entry instead of failing.
// @Tags entries
// @Accept json
// @Produce json
// @Param entry body createEntryRequest true "Entry data"
// @Success 200 {object} models.Entry
// @Failure 403 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/entries [post]
func (ec *EntryController) Create(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var req createEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	if err := ec.Gate.RequireMember(p, req.GroupID); err != nil {
		return utils.ServiceError(c, err)
	}

	var entryDate *time.Time
	if req.EntryDate != "" {
		t, err := time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			return utils.ServiceError(c, services.NewValidation("entry_date must be in YYYY-MM-DD format"))
		}
		d := models.DateOnly(t)
		entryDate = &d
	}

	entry, err := ec.Entries.CreateOrUpdate(p.UserID, req.GroupID, req.Section, req.Content, entryDate)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	_ = ec.Audit.LogEvent(p.UserID, "create_entry", "entry", entry.ID,
		map[string]interface{}{"group_id": req.GroupID, "section": entry.Section}, c.IP())

	return utils.Success(c, fiber.StatusOK, entry)
}

// List returns a group's entries for a date, optionally filtered to one
// member. Membership is required; reading another member's entries
// additionally requires self, group admin, or super admin.
func (ec *EntryController) List(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	groupID := uint(c.QueryInt("group_id"))
	if groupID == 0 {
		return utils.ServiceError(c, services.NewValidation("group_id is required"))
	}
	if err := ec.Gate.RequireMember(p, groupID); err != nil {
		return utils.ServiceError(c, err)
	}

	date, err := parseDateQuery(c, "date")
	if err != nil {
		return utils.ServiceError(c, err)
	}

	var userID *uint
	if raw := uint(c.QueryInt("user_id")); raw != 0 {
		if err := ec.Gate.RequireMemberRead(p, groupID, raw); err != nil {
			return utils.ServiceError(c, err)
		}
		userID = &raw
	}

	entries, err := ec.Entries.ListGroupEntries(groupID, date, userID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, entries)
}

// ListToday returns the caller's own entries for today across groups,
// or scoped to one group via group_id.
func (ec *EntryController) ListToday(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var groupID *uint
	if raw := uint(c.QueryInt("group_id")); raw != 0 {
		if err := ec.Gate.RequireMember(p, raw); err != nil {
			return utils.ServiceError(c, err)
		}
		groupID = &raw
	}

	entries, err := ec.Entries.ListToday(p.UserID, groupID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, entries)
}

type updateEntryRequest struct {
	Content *string `json:"content"`
	Section *string `json:"section"`
}

// Update edits the caller's own entry. The edit counter only moves when
// the stored content actually changes.
func (ec *EntryController) Update(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	entryID, err := c.ParamsInt("id")
	if err != nil || entryID <= 0 {
		return utils.BadRequest(c, "invalid entry id")
	}

	var req updateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	if err := ec.requireEntryOwner(p, uint(entryID)); err != nil {
		return utils.ServiceError(c, err)
	}

	entry, err := ec.Entries.Update(uint(entryID), req.Content, req.Section)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	_ = ec.Audit.LogEvent(p.UserID, "update_entry", "entry", entry.ID, nil, c.IP())

	return utils.Success(c, fiber.StatusOK, entry)
}

// Delete soft-deletes the caller's own entry. The slot becomes writable
// again and the row stays restorable.
func (ec *EntryController) Delete(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	entryID, err := c.ParamsInt("id")
	if err != nil || entryID <= 0 {
		return utils.BadRequest(c, "invalid entry id")
	}

	if err := ec.requireEntryOwner(p, uint(entryID)); err != nil {
		return utils.ServiceError(c, err)
	}
	if err := ec.Entries.SoftDelete(uint(entryID)); err != nil {
		return utils.ServiceError(c, err)
	}

	_ = ec.Audit.LogEvent(p.UserID, "delete_entry", "entry", uint(entryID), nil, c.IP())

	return utils.Message(c, "entry deleted")
}

// Restore brings back a soft-deleted entry, provided its slot has not
// been refilled in the meantime.
func (ec *EntryController) Restore(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	entryID, err := c.ParamsInt("id")
	if err != nil || entryID <= 0 {
		return utils.BadRequest(c, "invalid entry id")
	}

	entry, err := ec.Entries.Restore(uint(entryID), p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	_ = ec.Audit.LogEvent(p.UserID, "restore_entry", "entry", entry.ID, nil, c.IP())

	return utils.Success(c, fiber.StatusOK, entry)
}

// requireEntryOwner hides entries the caller does not own behind a 404
// so entry IDs cannot be probed.
func (ec *EntryController) requireEntryOwner(p services.Principal, entryID uint) error {
	var entry models.Entry
	if err := ec.DB.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NewNotFound("entry not found")
		}
		return err
	}
	if entry.UserID != p.UserID {
		return services.NewNotFound("entry not found")
	}
	return nil
}
