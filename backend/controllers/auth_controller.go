package controllers

import (
	"errors"
	"strings"
	"time"

	"dailytracker/backend/config"
	"dailytracker/backend/middleware"
	"dailytracker/backend/models"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionCookieName = "session"

	minPasswordLength = 6
	maxPasswordLength = 128
	maxNameLength     = 100
)

type AuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer utils.Mailer
	Audit  *services.AuditService
}

func NewAuthController(db *gorm.DB, cfg *config.Config, mailer utils.Mailer, audit *services.AuditService) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Mailer: mailer, Audit: audit}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return services.NewValidation("password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return services.NewValidation("password must be at most 128 characters")
	}
	return nil
}

// [+] Register godoc
// @Summary Register a new user
// @Description Creates a new user account and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Param user body registerRequest true "User registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	email := services.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return utils.ServiceError(c, services.NewValidation("a valid email is required"))
	}
	if err := validatePassword(req.Password); err != nil {
		return utils.ServiceError(c, err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxNameLength {
		return utils.ServiceError(c, services.NewValidation("name is required and must be at most 100 characters"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "could not hash password")
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         models.RoleUser,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.ServiceError(c, services.NewConflict("an account with this email already exists"))
		}
		return utils.InternalServerError(c, "could not create user")
	}

	_ = ac.Audit.LogEvent(user.ID, "register", "user", user.ID, nil, c.IP())

	return ac.startSession(c, &user, fiber.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

// [+] Login godoc
// @Summary Authenticate a user
// @Description Verifies credentials (and TOTP code when 2FA is enabled) and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	var user models.User
	err := ac.DB.Where("email = ?", services.NormalizeEmail(req.Email)).First(&user).Error
	if err != nil {
		// Same message as a bad password so the endpoint does not leak
		// which emails are registered.
		return utils.Unauthorized(c, "invalid email or password")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return utils.Unauthorized(c, "invalid email or password")
	}

	if user.Is2FAEnabled {
		if req.TOTPCode == "" {
			return utils.Error(c, fiber.StatusUnauthorized, "ERR_2FA_REQUIRED",
				"two-factor code required", nil)
		}
		if !totp.Validate(req.TOTPCode, user.TOTPSecret) {
			return utils.Unauthorized(c, "invalid two-factor code")
		}
	}

	now := time.Now()
	ac.DB.Model(&user).Update("last_login", now)

	_ = ac.Audit.LogEvent(user.ID, "login", "user", user.ID, nil, c.IP())

	return ac.startSession(c, &user, fiber.StatusOK)
}

// Logout clears the session cookie. The JWT itself stays valid until it
// expires; there is no server-side session store to revoke.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   ac.Cfg.CookieSecure,
		SameSite: ac.Cfg.CookieSameSite,
	})
	return utils.Message(c, "logged out")
}

// Me returns the authenticated user's profile.
func (ac *AuthController) Me(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var user models.User
	if err := ac.DB.First(&user, p.UserID).Error; err != nil {
		return utils.Unauthorized(c, "user not found")
	}

	return utils.Success(c, fiber.StatusOK, userView(&user))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword always responds with the same message regardless of
// whether the email is registered.
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	email := services.NormalizeEmail(req.Email)
	var user models.User
	if err := ac.DB.Where("email = ?", email).First(&user).Error; err == nil {
		token, err := utils.GeneratePasswordResetToken(user.Email, ac.Cfg)
		if err == nil {
			ac.Mailer.SendPasswordReset(user.Email, token)
		}
	}

	return utils.Message(c, "if the email is registered, a reset link has been sent")
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	email, err := utils.VerifyPasswordResetToken(req.Token, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "invalid or expired reset token")
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return utils.ServiceError(c, err)
	}

	var user models.User
	if err := ac.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return utils.Unauthorized(c, "invalid or expired reset token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "could not hash password")
	}
	if err := ac.DB.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		return utils.InternalServerError(c, "could not update password")
	}

	_ = ac.Audit.LogEvent(user.ID, "password_reset", "user", user.ID, nil, c.IP())

	return utils.Message(c, "password updated")
}

// Setup2FA generates a TOTP secret for the caller. The secret is stored
// immediately but 2FA is only enforced once Verify2FA confirms the user
// can produce a valid code.
func (ac *AuthController) Setup2FA(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var user models.User
	if err := ac.DB.First(&user, p.UserID).Error; err != nil {
		return utils.Unauthorized(c, "user not found")
	}
	if user.Is2FAEnabled {
		return utils.ServiceError(c, services.NewValidation("two-factor authentication is already enabled"))
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      ac.Cfg.TOTPIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return utils.InternalServerError(c, "could not generate TOTP secret")
	}

	if err := ac.DB.Model(&user).Update("totp_secret", key.Secret()).Error; err != nil {
		return utils.InternalServerError(c, "could not store TOTP secret")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"secret":      key.Secret(),
		"otpauth_url": key.URL(),
	})
}

type verify2FARequest struct {
	Code string `json:"code"`
}

func (ac *AuthController) Verify2FA(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var req verify2FARequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.First(&user, p.UserID).Error; err != nil {
		return utils.Unauthorized(c, "user not found")
	}
	if user.TOTPSecret == "" {
		return utils.ServiceError(c, services.NewValidation("run 2FA setup before verifying"))
	}
	if !totp.Validate(req.Code, user.TOTPSecret) {
		return utils.ServiceError(c, services.NewValidation("invalid two-factor code"))
	}

	if err := ac.DB.Model(&user).Update("is_2fa_enabled", true).Error; err != nil {
		return utils.InternalServerError(c, "could not enable 2FA")
	}

	_ = ac.Audit.LogEvent(user.ID, "enable_2fa", "user", user.ID, nil, c.IP())

	return utils.Message(c, "two-factor authentication enabled")
}

// Disable2FA requires a currently valid code so a hijacked session
// cannot silently strip the second factor.
func (ac *AuthController) Disable2FA(c *fiber.Ctx) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return utils.Unauthorized(c, "not authenticated")
	}

	var req verify2FARequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.First(&user, p.UserID).Error; err != nil {
		return utils.Unauthorized(c, "user not found")
	}
	if !user.Is2FAEnabled {
		return utils.ServiceError(c, services.NewValidation("two-factor authentication is not enabled"))
	}
	if !totp.Validate(req.Code, user.TOTPSecret) {
		return utils.ServiceError(c, services.NewValidation("invalid two-factor code"))
	}

	err := ac.DB.Model(&user).Updates(map[string]interface{}{
		"is_2fa_enabled": false,
		"totp_secret":    "",
	}).Error
	if err != nil {
		return utils.InternalServerError(c, "could not disable 2FA")
	}

	_ = ac.Audit.LogEvent(user.ID, "disable_2fa", "user", user.ID, nil, c.IP())

	return utils.Message(c, "two-factor authentication disabled")
}

func (ac *AuthController) startSession(c *fiber.Ctx, user *models.User, status int) error {
	token, err := utils.GenerateSessionToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "could not generate token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(utils.SessionTokenTTL),
		HTTPOnly: true,
		Secure:   ac.Cfg.CookieSecure,
		SameSite: ac.Cfg.CookieSameSite,
	})

	return utils.Success(c, status, fiber.Map{
		"token": token,
		"user":  userView(user),
	})
}

func userView(user *models.User) fiber.Map {
	return fiber.Map{
		"id":             user.ID,
		"email":          user.Email,
		"name":           user.Name,
		"role":           user.Role,
		"is_2fa_enabled": user.Is2FAEnabled,
		"last_login":     user.LastLogin,
		"created_at":     user.CreatedAt,
	}
}
