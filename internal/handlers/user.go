package handlers

import (
	"github.com/codingclub/hackportal/internal/services"
	"github.com/codingclub/hackportal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(db *gorm.DB, store services.BlobStore) *UserHandler {
	return &UserHandler{
		userService: services.NewUserService(db, store),
	}
}

// List returns paginated users
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	var req services.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.userService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Verify marks an account verified
// POST /api/admin/users/:id/verify
func (h *UserHandler) Verify(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid user id")
	if !ok {
		return
	}

	user, err := h.userService.Verify(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// SetRole changes an account's role
// PUT /api/admin/users/:id/role
func (h *UserHandler) SetRole(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid user id")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.SetRole(id, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// Delete removes an account
// DELETE /api/admin/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid user id")
	if !ok {
		return
	}

	if err := h.userService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "user deleted"})
}

// --- Roll-number allowlist ---

// ListRolls returns the allowlist
// GET /api/admin/roll-numbers
func (h *UserHandler) ListRolls(c *gin.Context) {
	rolls, err := h.userService.ListRolls()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, rolls)
}

// AddRolls adds roll numbers to the allowlist
// POST /api/admin/roll-numbers
func (h *UserHandler) AddRolls(c *gin.Context) {
	var req struct {
		Rolls []string `json:"rolls" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	added, err := h.userService.AddRolls(req.Rolls)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"added": added})
}

// RemoveRoll deletes one roll number from the allowlist
// DELETE /api/admin/roll-numbers/:roll
func (h *UserHandler) RemoveRoll(c *gin.Context) {
	roll := c.Param("roll")
	if roll == "" {
		response.BadRequest(c, "roll number is required")
		return
	}

	if err := h.userService.RemoveRoll(roll); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "roll number removed"})
}
