package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"dailytracker/backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BackupTimeout bounds a single pg_dump run.
const BackupTimeout = 300 * time.Second

// BackupService triggers on-demand database dumps and records their
// outcome. It does not schedule anything; every run is a synchronous
// super-admin action.
type BackupService struct {
	DB     *gorm.DB
	DSN    string
	Dir    string
	Logger *zap.Logger
}

func NewBackupService(db *gorm.DB, dsn string, logger *zap.Logger) *BackupService {
	return &BackupService{DB: db, DSN: dsn, Dir: os.TempDir(), Logger: logger}
}

type BackupResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	BackupFile string `json:"backup_file,omitempty"`
	BackupSize int64  `json:"backup_size,omitempty"`
	BackupID   uint   `json:"backup_id,omitempty"`
}

// Trigger runs pg_dump with a hard timeout and logs the outcome. A
// failed dump is reported in the result, not as an error; only the
// bookkeeping itself can fail.
func (s *BackupService) Trigger(ctx context.Context, triggeredBy uint) (*BackupResult, error) {
	filename := fmt.Sprintf("backup_%s_%s.dump",
		time.Now().UTC().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(s.Dir, filename)

	ctx, cancel := context.WithTimeout(ctx, BackupTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pg_dump",
		"--no-owner", "--no-privileges", "--clean", "--if-exists",
		"--format=custom", "--dbname="+s.DSN, "-f", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		s.Logger.Error("backup failed",
			zap.String("file", filename), zap.ByteString("output", output), zap.Error(err))
		s.record(filename, 0, models.BackupFailed)
		return &BackupResult{
			Success:    false,
			Message:    fmt.Sprintf("backup failed: %v", err),
			BackupFile: filename,
		}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		s.record(filename, 0, models.BackupFailed)
		return &BackupResult{Success: false, Message: "backup file missing after dump", BackupFile: filename}, nil
	}
	size := info.Size()

	log := models.BackupLog{BackupFile: filename, BackupSize: size, Status: models.BackupSuccess}
	if err := s.DB.Create(&log).Error; err != nil {
		return nil, err
	}

	// Local file is transient; a real deployment ships it to object
	// storage before this point.
	os.Remove(path)

	s.Logger.Info("backup completed", zap.String("file", filename), zap.Int64("size", size))
	return &BackupResult{
		Success:    true,
		Message:    "backup completed successfully",
		BackupFile: filename,
		BackupSize: size,
		BackupID:   log.ID,
	}, nil
}

// record is best-effort failure bookkeeping.
func (s *BackupService) record(filename string, size int64, status string) {
	log := models.BackupLog{BackupFile: filename, BackupSize: size, Status: status}
	if err := s.DB.Create(&log).Error; err != nil {
		s.Logger.Warn("failed to record backup log", zap.Error(err))
	}
}

// Logs returns backup history, newest first.
func (s *BackupService) Logs(limit, offset int) ([]models.BackupLog, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var logs []models.BackupLog
	err := s.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, err
}

type BackupStats struct {
	TotalBackups      int64             `json:"total_backups"`
	SuccessfulBackups int64             `json:"successful_backups"`
	FailedBackups     int64             `json:"failed_backups"`
	TotalBackupSize   int64             `json:"total_backup_size"`
	LatestBackup      *models.BackupLog `json:"latest_backup,omitempty"`
}

func (s *BackupService) Stats() (*BackupStats, error) {
	var stats BackupStats
	if err := s.DB.Model(&models.BackupLog{}).Count(&stats.TotalBackups).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.BackupLog{}).Where("status = ?", models.BackupSuccess).
		Count(&stats.SuccessfulBackups).Error; err != nil {
		return nil, err
	}
	stats.FailedBackups = stats.TotalBackups - stats.SuccessfulBackups

	var total *int64
	if err := s.DB.Model(&models.BackupLog{}).Where("status = ?", models.BackupSuccess).
		Select("SUM(backup_size)").Scan(&total).Error; err != nil {
		return nil, err
	}
	if total != nil {
		stats.TotalBackupSize = *total
	}

	var latest models.BackupLog
	err := s.DB.Where("status = ?", models.BackupSuccess).
		Order("created_at DESC").First(&latest).Error
	if err == nil {
		stats.LatestBackup = &latest
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return &stats, nil
}
