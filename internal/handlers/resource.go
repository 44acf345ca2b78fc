package handlers

import (
	"github.com/codingclub/hackportal/internal/middleware"
	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/internal/services"
	"github.com/codingclub/hackportal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 20 MB cap on resource uploads
const maxResourceSize = 20 << 20

type ResourceHandler struct {
	resourceService *services.ResourceService
}

func NewResourceHandler(db *gorm.DB, store services.BlobStore) *ResourceHandler {
	return &ResourceHandler{
		resourceService: services.NewResourceService(db, store),
	}
}

// List returns approved resources
// GET /api/resources
func (h *ResourceHandler) List(c *gin.Context) {
	var req services.ResourceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.resourceService.ListPublic(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// ListMine returns the caller's own submissions in any status
// GET /api/resources/mine
func (h *ResourceHandler) ListMine(c *gin.Context) {
	var req services.ResourceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.resourceService.ListMine(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// ListAll returns resources in any status, for moderators
// GET /api/admin/resources
func (h *ResourceHandler) ListAll(c *gin.Context) {
	var req services.ResourceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.resourceService.ListAll(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns one resource. Non-approved resources are only visible to
// the submitter and admins.
// GET /api/resources/:id
func (h *ResourceHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid resource id")
	if !ok {
		return
	}

	resource, err := h.resourceService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if resource.Status != models.ResourceStatusApproved &&
		resource.SubmittedBy != middleware.GetUserID(c) && !middleware.IsAdmin(c) {
		response.NotFound(c, "resource not found")
		return
	}

	response.Success(c, resource)
}

// Submit creates a link resource
// POST /api/resources
func (h *ResourceHandler) Submit(c *gin.Context) {
	var req services.SubmitResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resource, err := h.resourceService.Submit(middleware.GetUserID(c), &req, nil)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, resource)
}

// Upload creates a file resource from a multipart form
// POST /api/resources/upload
func (h *ResourceHandler) Upload(c *gin.Context) {
	req := services.SubmitResourceRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		URL:         c.PostForm("url"),
	}
	if req.Title == "" {
		response.BadRequest(c, "title is required")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if file.Size > maxResourceSize {
		response.BadRequest(c, "file must be 20 MB or smaller")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer src.Close()

	upload := &services.FileUpload{
		Name: file.Filename,
		Type: file.Header.Get("Content-Type"),
		Size: file.Size,
		Body: src,
	}

	resource, err := h.resourceService.Submit(middleware.GetUserID(c), &req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, resource)
}

// Update edits a resource's descriptive fields
// PUT /api/resources/:id
func (h *ResourceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid resource id")
	if !ok {
		return
	}

	var req services.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resource, err := h.resourceService.Update(middleware.GetUserID(c), middleware.IsAdmin(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resource)
}

// Delete removes a resource
// DELETE /api/resources/:id, DELETE /api/admin/resources/:id
func (h *ResourceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid resource id")
	if !ok {
		return
	}

	if err := h.resourceService.Delete(middleware.GetUserID(c), middleware.IsAdmin(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "resource deleted"})
}

// Approve marks a resource approved
// POST /api/admin/resources/:id/approve
func (h *ResourceHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid resource id")
	if !ok {
		return
	}

	resource, err := h.resourceService.Approve(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resource)
}

// Reject marks a resource rejected
// POST /api/admin/resources/:id/reject
func (h *ResourceHandler) Reject(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid resource id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "a rejection requires a reason")
		return
	}

	resource, err := h.resourceService.Reject(middleware.GetUserID(c), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resource)
}

// BulkDelete deletes several resources, reporting per-item outcomes
// POST /api/admin/resources/bulk-delete
func (h *ResourceHandler) BulkDelete(c *gin.Context) {
	var req struct {
		IDs []uint `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result := h.resourceService.BulkDelete(middleware.GetUserID(c), req.IDs)
	response.Success(c, result)
}
