package controllers

import (
	"dailytracker/backend/middleware"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

// List returns the caller's notifications, newest first.
func (nc *NotificationController) List(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	notifications, err := nc.Notifications.ListForUser(p.UserID,
		c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, notifications)
}

// MarkRead marks one of the caller's notifications as read.
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	notificationID, err := c.ParamsInt("id")
	if err != nil || notificationID <= 0 {
		return utils.BadRequest(c, "invalid notification id")
	}

	notification, err := nc.Notifications.MarkRead(uint(notificationID), p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, notification)
}

// MarkAllRead marks every unread notification as read and reports how
// many were affected.
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	updated, err := nc.Notifications.MarkAllRead(p.UserID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"updated": updated})
}
