package services

import (
	"errors"
	"fmt"

	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrDuplicateRequest = response.NewConflict("join request already pending")
	ErrAlreadyMember    = response.NewConflict("user is already a member of this team")
	ErrRequestNotFound  = response.NewNotFound("no pending join request from this user")
	ErrInviteNotFound   = response.NewNotFound("invitation not found")
	ErrDuplicateInvite  = response.NewConflict("an invitation for this user is already pending")
	ErrInviteResolved   = response.NewConflict("invitation has already been resolved")
	ErrUserUnavailable  = response.NewStale("user joined another team in the meantime")
	ErrTeamUnavailable  = response.NewStale("team was disbanded in the meantime")
	ErrInviteWithdrawn  = response.NewStale("invitation no longer exists")
)

// MembershipService runs the join-request and invitation workflows. Both
// admission paths (leader approval and invite acceptance) go through the
// same admitMember routine so the size, gender-balance and single-affiliation
// rules cannot diverge.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// admitMember performs the guarded admission of user into team. The caller
// must hold the team's admission lock; tx provides rollback if any step fails.
//
// The team_id update is conditional on the user still being teamless, which
// closes the cross-team race: two concurrent approvals on different teams can
// both pass their local checks, but only one conditional update can win.
func admitMember(tx *gorm.DB, team *models.Team, user *models.User) error {
	// the caller's team read happened before the lock was taken; the team may
	// have been disbanded in that window, so re-check it here
	var current models.Team
	if err := tx.First(&current, team.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamUnavailable
		}
		return err
	}

	var size int64
	if err := tx.Model(&models.User{}).Where("team_id = ?", team.ID).Count(&size).Error; err != nil {
		return err
	}
	if size >= models.MaxTeamSize {
		return ErrTeamFull
	}

	// a team may not reach full size with zero female members
	if size == models.MaxTeamSize-1 && user.Gender != models.GenderFemale {
		var females int64
		if err := tx.Model(&models.User{}).
			Where("team_id = ? AND gender = ?", team.ID, models.GenderFemale).
			Count(&females).Error; err != nil {
			return err
		}
		if females == 0 {
			return ErrGenderBalance
		}
	}

	res := tx.Model(&models.User{}).Where("id = ? AND team_id IS NULL", user.ID).Update("team_id", team.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserUnavailable
	}

	// every outstanding request by this user, to any team, is now stale
	return tx.Where("user_id = ?", user.ID).Delete(&models.JoinRequest{}).Error
}

// RequestJoin records the requester's intent to join a team. The
// gender-balance rule is deliberately not checked here: membership can change
// between request and approval, so the rule is enforced at admission only.
func (s *MembershipService) RequestJoin(userID, teamID uint) (*models.Team, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if user.TeamID != nil {
		return nil, ErrAlreadyInTeam
	}

	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	var size int64
	if err := s.db.Model(&models.User{}).Where("team_id = ?", teamID).Count(&size).Error; err != nil {
		return nil, err
	}
	if size >= models.MaxTeamSize {
		return nil, ErrTeamFull
	}

	request := models.JoinRequest{TeamID: teamID, UserID: userID}
	if err := s.db.Create(&request).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}

	s.notifyLeader(&team, fmt.Sprintf("%s has requested to join your team %q.", user.Name, team.Name))
	return &team, nil
}

// CancelJoinRequest withdraws the requester's pending request. Cancelling a
// request that no longer exists is a no-op, but a member of the team cannot
// "cancel" a request, that state is inconsistent and reported as such.
func (s *MembershipService) CancelJoinRequest(userID, teamID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return ErrUserNotFound
	}
	if user.TeamID != nil && *user.TeamID == teamID {
		return ErrAlreadyMember
	}

	return s.db.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.JoinRequest{}).Error
}

// ApproveJoinRequest admits a pending requester. All preconditions are
// re-validated at approval time under the team's admission lock; a candidate
// who joined elsewhere in the meantime gets their stale request pruned and
// the leader a stale-state error.
func (s *MembershipService) ApproveJoinRequest(leaderID, teamID, userID uint) (*models.Team, error) {
	team, err := s.leaderTeam(leaderID, teamID)
	if err != nil {
		return nil, err
	}

	unlock := admissionLocks.Lock(teamID)
	defer unlock()

	var request models.JoinRequest
	if err := s.db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	var candidate models.User
	if err := s.db.First(&candidate, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return admitMember(tx, team, &candidate)
	})
	if err != nil {
		if errors.Is(err, ErrUserUnavailable) {
			// prune the stale request so it does not dangle
			s.db.Delete(&request)
		}
		return nil, err
	}

	s.notifyUser(&candidate, fmt.Sprintf("Your request to join team %q was approved.", team.Name))

	var result models.Team
	if err := s.db.Preload("Members").First(&result, teamID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectJoinRequest denies a pending requester. No membership side effects.
func (s *MembershipService) RejectJoinRequest(leaderID, teamID, userID uint) error {
	team, err := s.leaderTeam(leaderID, teamID)
	if err != nil {
		return err
	}

	res := s.db.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.JoinRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestNotFound
	}

	var candidate models.User
	if s.db.First(&candidate, userID).Error == nil {
		s.notifyUser(&candidate, fmt.Sprintf("Your request to join team %q was declined.", team.Name))
	}
	return nil
}

// PendingRequests lists the pending requesters of a team, leader only.
func (s *MembershipService) PendingRequests(leaderID, teamID uint) ([]models.JoinRequest, error) {
	if _, err := s.leaderTeam(leaderID, teamID); err != nil {
		return nil, err
	}

	var requests []models.JoinRequest
	err := s.db.Preload("User").Where("team_id = ?", teamID).Order("created_at ASC").Find(&requests).Error
	return requests, err
}

// Invite creates a leader-initiated invitation for a teamless user.
func (s *MembershipService) Invite(leaderID, teamID, userID uint) (*models.Invitation, error) {
	team, err := s.leaderTeam(leaderID, teamID)
	if err != nil {
		return nil, err
	}

	var invitee models.User
	if err := s.db.First(&invitee, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if invitee.TeamID != nil {
		return nil, ErrAlreadyInTeam
	}

	var pending int64
	s.db.Model(&models.Invitation{}).
		Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, models.InviteStatusPending).
		Count(&pending)
	if pending > 0 {
		return nil, ErrDuplicateInvite
	}

	invitation := models.Invitation{
		TeamID:    teamID,
		UserID:    userID,
		InvitedBy: leaderID,
		Status:    models.InviteStatusPending,
	}
	if err := s.db.Create(&invitation).Error; err != nil {
		return nil, err
	}

	s.notifyUser(&invitee, fmt.Sprintf("You have been invited to join team %q.", team.Name))
	return &invitation, nil
}

// AcceptInvite admits the invitee through the same admission checks as a
// leader approval.
func (s *MembershipService) AcceptInvite(userID, inviteID uint) (*models.Team, error) {
	invitation, err := s.pendingInvite(inviteID)
	if err != nil {
		return nil, err
	}
	if invitation.UserID != userID {
		return nil, response.NewForbidden("this invitation is not addressed to you")
	}

	var team models.Team
	if err := s.db.First(&team, invitation.TeamID).Error; err != nil {
		return nil, ErrTeamNotFound
	}

	var invitee models.User
	if err := s.db.First(&invitee, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	unlock := admissionLocks.Lock(team.ID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := admitMember(tx, &team, &invitee); err != nil {
			return err
		}
		// the invitation row may have been withdrawn or cascaded away since
		// it was read above; admitting without resolving it would leave the
		// admission untracked, so roll back
		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InviteStatusPending).
			Update("status", models.InviteStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteWithdrawn
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserUnavailable) {
			// the invitee accepting is the one already affiliated
			return nil, ErrAlreadyInTeam
		}
		return nil, err
	}

	var result models.Team
	if err := s.db.Preload("Members").First(&result, team.ID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectInvite lets the invitee decline.
func (s *MembershipService) RejectInvite(userID, inviteID uint) error {
	invitation, err := s.pendingInvite(inviteID)
	if err != nil {
		return err
	}
	if invitation.UserID != userID {
		return response.NewForbidden("this invitation is not addressed to you")
	}

	return s.db.Model(invitation).Update("status", models.InviteStatusRejected).Error
}

// CancelInvite lets the leader withdraw a pending invitation.
func (s *MembershipService) CancelInvite(leaderID, inviteID uint) error {
	invitation, err := s.pendingInvite(inviteID)
	if err != nil {
		return err
	}
	if _, err := s.leaderTeam(leaderID, invitation.TeamID); err != nil {
		return err
	}

	return s.db.Delete(invitation).Error
}

// ListInvitations returns the user's pending invitations with teams loaded.
func (s *MembershipService) ListInvitations(userID uint) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := s.db.Preload("Team").
		Where("user_id = ? AND status = ?", userID, models.InviteStatusPending).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

func (s *MembershipService) pendingInvite(inviteID uint) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := s.db.First(&invitation, inviteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	if invitation.Status != models.InviteStatusPending {
		return nil, ErrInviteResolved
	}
	return &invitation, nil
}

func (s *MembershipService) leaderTeam(userID, teamID uint) (*models.Team, error) {
	var team models.Team
	if err := s.db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.LeaderID != userID {
		return nil, ErrNotLeader
	}
	return &team, nil
}

func (s *MembershipService) notifyUser(user *models.User, text string) {
	if user.Email == "" {
		return
	}
	EnqueueMail([]string{user.Email}, "Team membership update", text)
}

func (s *MembershipService) notifyLeader(team *models.Team, text string) {
	var leader models.User
	if err := s.db.First(&leader, team.LeaderID).Error; err != nil || leader.Email == "" {
		return
	}
	EnqueueMail([]string{leader.Email}, "New join request", text)
}
