package handlers

import (
	"strconv"

	"github.com/codingclub/hackportal/internal/middleware"
	"github.com/codingclub/hackportal/internal/services"
	"github.com/codingclub/hackportal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 5 MB cap on team logos
const maxLogoSize = 5 << 20

type TeamHandler struct {
	teamService       *services.TeamService
	membershipService *services.MembershipService
	store             services.BlobStore
}

func NewTeamHandler(db *gorm.DB, store services.BlobStore) *TeamHandler {
	return &TeamHandler{
		teamService:       services.NewTeamService(db, store),
		membershipService: services.NewMembershipService(db),
		store:             store,
	}
}

// List returns paginated teams
// GET /api/teams
func (h *TeamHandler) List(c *gin.Context) {
	var req services.TeamListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.teamService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a team by ID
// GET /api/teams/:id
func (h *TeamHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}

	team, err := h.teamService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, team)
}

// MyTeam returns the caller's team
// GET /api/teams/my-team
func (h *TeamHandler) MyTeam(c *gin.Context) {
	team, err := h.teamService.GetForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, team)
}

// Create creates a new team led by the caller
// POST /api/teams
func (h *TeamHandler) Create(c *gin.Context) {
	var req services.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	team, err := h.teamService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, team)
}

// Update edits a team
// PUT /api/teams/:id
func (h *TeamHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}

	var req services.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	team, err := h.teamService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, team)
}

// UploadLogo replaces the team logo
// POST /api/teams/:id/logo
func (h *TeamHandler) UploadLogo(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "logo file is required")
		return
	}
	if file.Size > maxLogoSize {
		response.BadRequest(c, "logo must be 5 MB or smaller")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer src.Close()

	key := services.NewBlobKey(file.Filename)
	if _, err := h.store.Save(key, src); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	team, err := h.teamService.SetLogo(middleware.GetUserID(c), id, key)
	if err != nil {
		// membership check failed after the blob was written
		h.store.Delete(key)
		response.Error(c, err)
		return
	}

	response.Success(c, team)
}

// Delete disbands a team
// DELETE /api/teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}

	if err := h.teamService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "team deleted"})
}

// Leave removes the caller from their team
// DELETE /api/teams/members/leave
func (h *TeamHandler) Leave(c *gin.Context) {
	if err := h.teamService.Leave(middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "left team"})
}

// RemoveMember force-removes a member
// DELETE /api/teams/:id/members/:user_id
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}
	memberID, ok := parseID(c, "user_id", "invalid user id")
	if !ok {
		return
	}

	team, err := h.teamService.RemoveMember(middleware.GetUserID(c), id, memberID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, team)
}

// --- Join-request workflow ---

// RequestJoin asks to join a team
// POST /api/teams/:id/join
func (h *TeamHandler) RequestJoin(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}

	team, err := h.membershipService.RequestJoin(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"team": team, "message": "join request sent"})
}

// CancelJoin withdraws the caller's join request
// POST /api/teams/:id/cancel-request
func (h *TeamHandler) CancelJoin(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}

	if err := h.membershipService.CancelJoinRequest(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "join request withdrawn"})
}

// PendingRequests lists the team's pending join requests
// GET /api/teams/:id/requests
func (h *TeamHandler) PendingRequests(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}

	requests, err := h.membershipService.PendingRequests(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, requests)
}

// ApproveRequest admits a pending requester
// POST /api/teams/:id/approve/:user_id
func (h *TeamHandler) ApproveRequest(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "user_id", "invalid user id")
	if !ok {
		return
	}

	team, err := h.membershipService.ApproveJoinRequest(middleware.GetUserID(c), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, team)
}

// RejectRequest declines a pending requester
// POST /api/teams/:id/reject/:user_id
func (h *TeamHandler) RejectRequest(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "user_id", "invalid user id")
	if !ok {
		return
	}

	if err := h.membershipService.RejectJoinRequest(middleware.GetUserID(c), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "join request rejected"})
}

// --- Invitations ---

// Invite invites a user to the team
// POST /api/teams/:id/invitations
func (h *TeamHandler) Invite(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid team id")
	if !ok {
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	invitation, err := h.membershipService.Invite(middleware.GetUserID(c), id, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, invitation)
}

// MyInvitations lists the caller's pending invitations
// GET /api/invitations
func (h *TeamHandler) MyInvitations(c *gin.Context) {
	invitations, err := h.membershipService.ListInvitations(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, invitations)
}

// AcceptInvitation accepts an invitation
// POST /api/invitations/:id/accept
func (h *TeamHandler) AcceptInvitation(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid invitation id")
	if !ok {
		return
	}

	team, err := h.membershipService.AcceptInvite(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, team)
}

// RejectInvitation declines an invitation
// POST /api/invitations/:id/reject
func (h *TeamHandler) RejectInvitation(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid invitation id")
	if !ok {
		return
	}

	if err := h.membershipService.RejectInvite(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "invitation declined"})
}

// CancelInvitation withdraws an invitation the caller's team sent
// DELETE /api/invitations/:id
func (h *TeamHandler) CancelInvitation(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid invitation id")
	if !ok {
		return
	}

	if err := h.membershipService.CancelInvite(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "invitation cancelled"})
}

// parseID reads a uint path parameter, replying 400 on failure.
func parseID(c *gin.Context, name, errMsg string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, errMsg)
		return 0, false
	}
	return uint(id), true
}
