package controllers

import (
	"dailytracker/backend/middleware"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminController hosts the super-admin surface: audit logs, role
// management, moderation, and backups. Routing puts the whole group
// behind SuperAdminMiddleware; the services re-check the principal so a
// miswired route cannot widen access.
type AdminController struct {
	DB        *gorm.DB
	Roles     *services.RoleService
	Analytics *services.AnalyticsService
	Backups   *services.BackupService
	Audit     *services.AuditService
	Gate      *services.Gate
}

func NewAdminController(db *gorm.DB, roles *services.RoleService, analytics *services.AnalyticsService, backups *services.BackupService, audit *services.AuditService, gate *services.Gate) *AdminController {
	return &AdminController{DB: db, Roles: roles, Analytics: analytics, Backups: backups, Audit: audit, Gate: gate}
}

// AuditLogs pages through the audit trail, newest first. Optional
// filters: user_id, action, resource_type.
func (ad *AdminController) AuditLogs(c *fiber.Ctx) error {
	var filter services.AuditFilter
	if raw := uint(c.QueryInt("user_id")); raw != 0 {
		filter.UserID = &raw
	}
	filter.Action = c.Query("action")
	filter.ResourceType = c.Query("resource_type")

	logs, err := ad.Audit.ListLogs(c.QueryInt("limit", 50), c.QueryInt("offset", 0), filter)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, logs)
}

type roleChangeRequest struct {
	UserID  uint `json:"user_id"`
	GroupID uint `json:"group_id"`
}

// Promote makes a user the admin of a group, demoting the previous one.
func (ad *AdminController) Promote(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var req roleChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	if err := ad.Roles.PromoteToGroupAdmin(p, req.UserID, req.GroupID); err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Message(c, "user promoted to group admin")
}

// Demote strips a group admin back to a regular user.
func (ad *AdminController) Demote(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var req roleChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	if err := ad.Roles.DemoteToUser(p, req.UserID, req.GroupID); err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Message(c, "user demoted to regular user")
}

// DeactivateUser soft-deletes a user account and their data. Requires
// confirm=true; this is an admin action, distinct from GDPR erasure.
func (ad *AdminController) DeactivateUser(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return utils.BadRequest(c, "invalid user id")
	}
	if !c.QueryBool("confirm") {
		return utils.ServiceError(c, services.NewValidation("confirmation required: set confirm=true to proceed"))
	}

	if err := ad.Roles.SoftDeleteUser(p, uint(userID)); err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Message(c, "user deactivated")
}

type flagEntryRequest struct {
	Reason string `json:"reason"`
}

// FlagEntry marks an entry for moderation review.
func (ad *AdminController) FlagEntry(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	entryID, err := c.ParamsInt("id")
	if err != nil || entryID <= 0 {
		return utils.BadRequest(c, "invalid entry id")
	}

	var req flagEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	entry, err := ad.Analytics.FlagEntry(uint(entryID), req.Reason, p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, entry)
}

// UnflagEntry clears a moderation flag.
func (ad *AdminController) UnflagEntry(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	entryID, err := c.ParamsInt("id")
	if err != nil || entryID <= 0 {
		return utils.BadRequest(c, "invalid entry id")
	}

	entry, err := ad.Analytics.UnflagEntry(uint(entryID), p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, entry)
}

// TriggerBackup runs pg_dump synchronously and records the outcome. A
// failed dump is reported in the body, not as an HTTP error.
func (ad *AdminController) TriggerBackup(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	result, err := ad.Backups.Trigger(c.Context(), p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	_ = ad.Audit.LogEvent(p.UserID, "trigger_backup", "backup", result.BackupID,
		map[string]interface{}{"success": result.Success}, c.IP())

	return utils.Success(c, fiber.StatusOK, result)
}

// BackupLogs pages through past backup attempts, newest first.
func (ad *AdminController) BackupLogs(c *fiber.Ctx) error {
	logs, err := ad.Backups.Logs(c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, logs)
}

// BackupStats summarizes backup history: counts, total size, latest run.
func (ad *AdminController) BackupStats(c *fiber.Ctx) error {
	stats, err := ad.Backups.Stats()
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}
