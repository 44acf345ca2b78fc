package handlers

import (
	"github.com/codingclub/hackportal/internal/services"
	"github.com/codingclub/hackportal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(db),
	}
}

// GetStats returns the dashboard rollups
// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	resp, err := h.dashboardService.GetStats()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}
