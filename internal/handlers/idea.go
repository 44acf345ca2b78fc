package handlers

import (
	"github.com/codingclub/hackportal/internal/middleware"
	"github.com/codingclub/hackportal/internal/services"
	"github.com/codingclub/hackportal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type IdeaHandler struct {
	ideaService *services.IdeaService
}

func NewIdeaHandler(db *gorm.DB) *IdeaHandler {
	return &IdeaHandler{
		ideaService: services.NewIdeaService(db),
	}
}

// List returns paginated ideas
// GET /api/ideas
func (h *IdeaHandler) List(c *gin.Context) {
	var req services.IdeaListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ideaService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns an idea with comments
// GET /api/ideas/:id
func (h *IdeaHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid idea id")
	if !ok {
		return
	}

	idea, err := h.ideaService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, idea)
}

// Create posts a new idea
// POST /api/ideas
func (h *IdeaHandler) Create(c *gin.Context) {
	var req services.PostIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	idea, err := h.ideaService.Post(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, idea)
}

// Update edits an idea
// PUT /api/ideas/:id
func (h *IdeaHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid idea id")
	if !ok {
		return
	}

	var req services.UpdateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	idea, err := h.ideaService.Update(middleware.GetUserID(c), middleware.IsAdmin(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, idea)
}

// Delete removes an idea
// DELETE /api/ideas/:id
func (h *IdeaHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid idea id")
	if !ok {
		return
	}

	if err := h.ideaService.Delete(middleware.GetUserID(c), middleware.IsAdmin(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "idea deleted"})
}

// Comment adds a comment to an idea
// POST /api/ideas/:id/comments
func (h *IdeaHandler) Comment(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid idea id")
	if !ok {
		return
	}

	var req services.PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.ideaService.Comment(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, comment)
}

// DeleteComment removes a comment
// DELETE /api/ideas/:id/comments/:comment_id
func (h *IdeaHandler) DeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid idea id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id", "invalid comment id")
	if !ok {
		return
	}

	if err := h.ideaService.DeleteComment(middleware.GetUserID(c), middleware.IsAdmin(c), id, commentID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "comment deleted"})
}
