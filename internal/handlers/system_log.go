package handlers

import (
	"strconv"

	"github.com/codingclub/hackportal/internal/services"
	"github.com/codingclub/hackportal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemLogHandler struct {
	logService    *services.SystemLogService
	configService *services.SystemConfigService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{
		logService:    services.NewSystemLogService(db),
		configService: services.NewSystemConfigService(db),
	}
}

// List returns paginated system logs
// GET /api/admin/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.logService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetRetentionDays returns the log retention setting
// GET /api/admin/system-logs/retention
func (h *SystemLogHandler) GetRetentionDays(c *gin.Context) {
	days := h.configService.GetInt("log_retention_days", 30)
	response.Success(c, gin.H{"retention_days": days})
}

// SetRetentionDays updates the log retention setting
// PUT /api/admin/system-logs/retention
func (h *SystemLogHandler) SetRetentionDays(c *gin.Context) {
	var req struct {
		RetentionDays int `json:"retention_days" binding:"required,min=1,max=365"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.Set("log_retention_days", strconv.Itoa(req.RetentionDays)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"retention_days": req.RetentionDays})
}

// Cleanup deletes logs past the retention period
// POST /api/admin/system-logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	deleted, err := h.logService.Cleanup()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": deleted})
}
