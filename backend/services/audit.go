package services

import (
	"encoding/json"
	"strconv"

	"dailytracker/backend/models"

	"gorm.io/gorm"
)

type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// LogEvent appends an audit row. Errors are returned but callers on
// best-effort paths are expected to ignore them.
func (s *AuditService) LogEvent(userID uint, action, resourceType string, resourceID uint, metadata map[string]interface{}, ipAddress string) error {
	var meta string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			meta = string(b)
		}
	}
	log := models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   strconv.FormatUint(uint64(resourceID), 10),
		Metadata:     meta,
		IPAddress:    ipAddress,
	}
	return s.DB.Create(&log).Error
}

type AuditFilter struct {
	UserID       *uint
	Action       string
	ResourceType string
}

// ListLogs returns audit rows newest first. Limit is clamped to 1..100.
func (s *AuditService) ListLogs(limit, offset int, filter AuditFilter) ([]models.AuditLog, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := s.DB.Model(&models.AuditLog{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, err
}
