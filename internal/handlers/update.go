package handlers

import (
	"github.com/codingclub/hackportal/internal/services"
	"github.com/codingclub/hackportal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateHandler struct {
	updateService  *services.UpdateService
	scraperService *services.ScraperService
}

func NewUpdateHandler(db *gorm.DB, scraperService *services.ScraperService) *UpdateHandler {
	return &UpdateHandler{
		updateService:  services.NewUpdateService(db),
		scraperService: scraperService,
	}
}

// List returns paginated announcements
// GET /api/updates
func (h *UpdateHandler) List(c *gin.Context) {
	var req services.UpdateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.updateService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns one announcement
// GET /api/updates/:id
func (h *UpdateHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid update id")
	if !ok {
		return
	}

	update, err := h.updateService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, update)
}

// Create posts a manual announcement
// POST /api/admin/updates
func (h *UpdateHandler) Create(c *gin.Context) {
	var req services.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	update, err := h.updateService.Post(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, update)
}

// Delete removes an announcement
// DELETE /api/admin/updates/:id
func (h *UpdateHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid update id")
	if !ok {
		return
	}

	if err := h.updateService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "update deleted"})
}

// Scrape triggers a feed import run on demand
// POST /api/admin/updates/scrape
func (h *UpdateHandler) Scrape(c *gin.Context) {
	if h.scraperService == nil {
		response.BadRequest(c, "feed import is not configured")
		return
	}

	result, err := h.scraperService.Run()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, result)
}
