package controllers

import (
	"dailytracker/backend/middleware"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type GDPRController struct {
	GDPR  *services.GDPRService
	Audit *services.AuditService
}

func NewGDPRController(gdpr *services.GDPRService, audit *services.AuditService) *GDPRController {
	return &GDPRController{GDPR: gdpr, Audit: audit}
}

// Export returns everything stored about the caller, including
// soft-deleted rows, as one JSON document.
func (gc *GDPRController) Export(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	data, err := gc.GDPR.Export(p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	_ = gc.Audit.LogEvent(p.UserID, "gdpr_export", "user", p.UserID, nil, c.IP())

	return utils.Success(c, fiber.StatusOK, data)
}

// DeleteAccount permanently erases the caller's account and data.
// Requires confirm=true. Audit rows survive with the user reference
// anonymized.
func (gc *GDPRController) DeleteAccount(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	confirm := c.QueryBool("confirm")
	if confirm {
		// Logged before the deletion so the event itself gets anonymized
		// along with the rest of the trail.
		_ = gc.Audit.LogEvent(p.UserID, "gdpr_delete", "user", p.UserID, nil, c.IP())
	}

	summary, err := gc.GDPR.DeleteAccount(p.UserID, confirm)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HTTPOnly: true,
	})

	return utils.Message(c, summary)
}
