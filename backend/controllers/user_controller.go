package controllers

import (
	"strings"

	"dailytracker/backend/middleware"
	"dailytracker/backend/models"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// GetProfile returns the caller's profile.
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var user models.User
	if err := uc.DB.First(&user, p.UserID).Error; err != nil {
		return utils.NotFound(c, "user not found")
	}

	return utils.Success(c, fiber.StatusOK, userView(&user))
}

type updateProfileRequest struct {
	Name *string `json:"name"`
}

// UpdateProfile updates the mutable profile fields. Email and role
// changes go through dedicated flows.
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, p.UserID).Error; err != nil {
		return utils.NotFound(c, "user not found")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > maxNameLength {
			return utils.ServiceError(c, services.NewValidation("name is required and must be at most 100 characters"))
		}
		user.Name = name
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "could not update profile")
	}

	return utils.Success(c, fiber.StatusOK, userView(&user))
}
