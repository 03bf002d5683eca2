package utils

import (
	"dailytracker/backend/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds the application logger: structured JSON in
// production, colored console output in development.
func InitLogger(cfg *config.Config) *zap.Logger {
	var logConfig zap.Config
	if cfg.Environment == "production" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(level)

	logger, err := logConfig.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	return logger
}
