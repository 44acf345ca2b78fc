package services

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/logger"
	"gorm.io/gorm"
)

var globalDB *gorm.DB

func InitSystemLogger(db *gorm.DB) {
	globalDB = db
}

func LogInfo(module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	writeLog("info", module, action, message, userID, ip, userAgent, extra)
}

func LogWarning(module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	writeLog("warning", module, action, message, userID, ip, userAgent, extra)
}

func LogError(module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	writeLog("error", module, action, message, userID, ip, userAgent, extra)
}

func writeLog(level, module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	if globalDB == nil {
		return
	}

	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.SystemLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Extra:     extraStr,
		CreatedAt: time.Now(),
	}
	globalDB.Create(entry)
}

type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

type SystemLogListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Level    string `form:"level"`
	Module   string `form:"module"`
	Search   string `form:"search"`
}

type SystemLogListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.SystemLog `json:"items"`
}

// List returns paginated system logs, newest first.
func (s *SystemLogService) List(req *SystemLogListRequest) (*SystemLogListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.SystemLog{})
	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Search != "" {
		query = query.Where("message LIKE ?", "%"+req.Search+"%")
	}

	var total int64
	query.Count(&total)

	var items []models.SystemLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &SystemLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// Cleanup deletes logs older than the configured retention period.
func (s *SystemLogService) Cleanup() (int64, error) {
	days := s.retentionDays()
	cutoff := time.Now().AddDate(0, 0, -days)

	result := s.db.Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

func (s *SystemLogService) retentionDays() int {
	var cfg models.SystemConfig
	if err := s.db.Where("key = ?", "log_retention_days").First(&cfg).Error; err != nil {
		return 30
	}
	if days, err := strconv.Atoi(cfg.Value); err == nil && days > 0 {
		return days
	}
	return 30
}

var logCleanupStop chan struct{}

// StartLogCleanupScheduler runs the retention cleanup daily in the background.
func StartLogCleanupScheduler(db *gorm.DB) {
	logCleanupStop = make(chan struct{})

	go func() {
		service := NewSystemLogService(db)

		runCleanup(service)

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runCleanup(service)
			case <-logCleanupStop:
				return
			}
		}
	}()
}

// StopLogCleanupScheduler stops the background cleanup loop.
func StopLogCleanupScheduler() {
	if logCleanupStop != nil {
		close(logCleanupStop)
		logCleanupStop = nil
	}
}

func runCleanup(service *SystemLogService) {
	deleted, err := service.Cleanup()
	if err != nil {
		logger.Warnf("[SystemLog] Failed to cleanup old logs: %v", err)
		return
	}
	if deleted > 0 {
		logger.Infof("[SystemLog] Cleaned up %d expired log entries", deleted)
	}
}
