package middleware

import (
	"strings"

	"dailytracker/backend/config"
	"dailytracker/backend/models"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const principalKey = "principal"

// AuthMiddleware verifies the session (cookie or bearer header), loads
// the active user, and stores an explicit Principal in the request
// context. Services only ever see that Principal; nothing downstream
// re-resolves identity.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("session")
		if token == "" {
			token = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		}
		if token == "" {
			return utils.Unauthorized(c, "not authenticated")
		}

		userID, err := utils.ParseSessionToken(token, cfg)
		if err != nil {
			return utils.Unauthorized(c, "invalid or expired session")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return utils.Unauthorized(c, "user not found")
		}

		c.Locals(principalKey, services.Principal{UserID: user.ID, Role: user.Role})
		return c.Next()
	}
}

// Principal returns the verified caller stored by AuthMiddleware.
func Principal(c *fiber.Ctx) (services.Principal, bool) {
	p, ok := c.Locals(principalKey).(services.Principal)
	return p, ok
}

// SuperAdminMiddleware rejects non-super-admin principals before the
// handler runs. Must be chained after AuthMiddleware.
func SuperAdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := Principal(c)
		if !ok {
			return utils.Unauthorized(c, "not authenticated")
		}
		if !p.IsSuperAdmin() {
			return utils.Forbidden(c, "super admin access required")
		}
		return c.Next()
	}
}
