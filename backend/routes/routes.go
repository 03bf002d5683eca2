package routes

import (
	"dailytracker/backend/config"
	"dailytracker/backend/controllers"
	"dailytracker/backend/middleware"
	"dailytracker/backend/services"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	// Services
	audit := services.NewAuditService(db)
	gate := services.NewGate(db, audit)
	entryService := services.NewEntryService(db)
	groupService := services.NewGroupService(db)
	roleService := services.NewRoleService(db, audit)
	analyticsService := services.NewAnalyticsService(db, audit)
	gdprService := services.NewGDPRService(db)
	notificationService := services.NewNotificationService(db)
	backupService := services.NewBackupService(db, cfg.DSN(), logger)
	mailer := utils.NewLogMailer(logger)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	superAdminMiddleware := middleware.SuperAdminMiddleware()

	// Health and metrics
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, mailer, audit)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Post("/api/auth/logout", authController.Logout)
	app.Get("/api/auth/me", authMiddleware, authController.Me)
	app.Post("/api/auth/password/forgot", authController.ForgotPassword)
	app.Post("/api/auth/password/reset", authController.ResetPassword)
	app.Post("/api/auth/2fa/setup", authMiddleware, authController.Setup2FA)
	app.Post("/api/auth/2fa/verify", authMiddleware, authController.Verify2FA)
	app.Post("/api/auth/2fa/disable", authMiddleware, authController.Disable2FA)

	// User routes
	userController := controllers.NewUserController(db)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Entry routes
	entryController := controllers.NewEntryController(db, entryService, gate, audit)
	entries := app.Group("/api/entries", authMiddleware)
	entries.Get("/", entryController.List)
	entries.Get("/today", entryController.ListToday)
	entries.Post("/", entryController.Create)
	entries.Put("/:id", entryController.Update)
	entries.Delete("/:id", entryController.Delete)
	entries.Post("/:id/restore", entryController.Restore)

	// Group routes
	groupController := controllers.NewGroupController(db, groupService, gate, audit, mailer)
	groups := app.Group("/api/groups", authMiddleware)
	groups.Get("/", groupController.List)
	groups.Post("/", groupController.Create)
	groups.Get("/:id", groupController.Get)
	groups.Put("/:id", groupController.Update)
	groups.Delete("/:id", groupController.Delete)
	groups.Get("/:id/members", groupController.ListMembers)
	groups.Post("/:id/members", groupController.AddMember)
	groups.Delete("/:id/members/:userId", groupController.RemoveMember)
	groups.Post("/:id/transfer", groupController.TransferOwnership)

	// Analytics routes
	analyticsController := controllers.NewAnalyticsController(db, entryService, analyticsService, gate)
	analytics := app.Group("/api/analytics", authMiddleware)
	analytics.Get("/streak", analyticsController.Streak)
	analytics.Get("/streak/activity", analyticsController.ActivityStreak)
	analytics.Get("/progress", analyticsController.Progress)
	analytics.Get("/history", analyticsController.History)
	analytics.Get("/groups/:id", analyticsController.GroupAnalytics)
	analytics.Get("/global", superAdminMiddleware, analyticsController.GlobalAnalytics)

	// Notification routes
	notificationController := controllers.NewNotificationController(notificationService)
	notifications := app.Group("/api/notifications", authMiddleware)
	notifications.Get("/", notificationController.List)
	// read-all before :id so the literal segment wins.
	notifications.Put("/read-all", notificationController.MarkAllRead)
	notifications.Put("/:id/read", notificationController.MarkRead)

	// GDPR routes
	gdprController := controllers.NewGDPRController(gdprService, audit)
	app.Get("/api/gdpr/export", authMiddleware, gdprController.Export)
	app.Delete("/api/gdpr/account", authMiddleware, gdprController.DeleteAccount)

	// Admin routes
	adminController := controllers.NewAdminController(db, roleService, analyticsService, backupService, audit, gate)
	admin := app.Group("/api/admin", authMiddleware, superAdminMiddleware)
	admin.Get("/audit-logs", adminController.AuditLogs)
	admin.Post("/roles/promote", adminController.Promote)
	admin.Post("/roles/demote", adminController.Demote)
	admin.Delete("/users/:id", adminController.DeactivateUser)
	admin.Post("/entries/:id/flag", adminController.FlagEntry)
	admin.Post("/entries/:id/unflag", adminController.UnflagEntry)
	admin.Post("/backups", adminController.TriggerBackup)
	admin.Get("/backups", adminController.BackupLogs)
	admin.Get("/backups/stats", adminController.BackupStats)
}
