package utils

import (
	"fmt"
	"time"

	"dailytracker/backend/config"
	"dailytracker/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the Postgres connection, configures the pool, and migrates
// the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Error
	if cfg.Environment == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := MigrateSchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

// MigrateSchema runs AutoMigrate for every model. Shared with the test
// suite, which runs it against an in-memory database.
func MigrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Entry{},
		&models.AuditLog{},
		&models.Notification{},
		&models.BackupLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}
