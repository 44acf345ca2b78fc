package services

import (
	"errors"
	"strings"

	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/logger"
	"github.com/codingclub/hackportal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound       = response.NewNotFound("team not found")
	ErrUserNotFound       = response.NewNotFound("user not found")
	ErrMemberNotFound     = response.NewNotFound("member not found in this team")
	ErrNotLeader          = response.NewForbidden("only the team leader can do this")
	ErrAlreadyInTeam      = response.NewConflict("user already belongs to a team")
	ErrNameTaken          = response.NewConflict("team name is already taken")
	ErrTeamFull           = response.NewConflict("team is full")
	ErrGenderBalance      = response.NewConflict("a team of six must include at least one female member")
	ErrCannotRemoveLeader = response.NewConflict("the leader cannot be removed; delete the team instead")
	ErrLeaderMustDelete   = response.NewConflict("the leader cannot leave; delete the team instead")
	ErrNotInTeam          = response.NewConflict("user does not belong to a team")
)

// admissionLocks serializes the check-and-admit section per team, shared by
// the registry (delete) and the membership workflow (approve, accept-invite).
var admissionLocks = newTeamLocks()

// TeamService owns team entities and the registry operations on them.
type TeamService struct {
	db    *gorm.DB
	store BlobStore
}

func NewTeamService(db *gorm.DB, store BlobStore) *TeamService {
	return &TeamService{db: db, store: store}
}

type CreateTeamRequest struct {
	Name             string `json:"name" binding:"required"`
	ProblemTitle     string `json:"problem_title"`
	ProblemStatement string `json:"problem_statement"`
}

type UpdateTeamRequest struct {
	Name             string  `json:"name"`
	ProblemTitle     *string `json:"problem_title"`
	ProblemStatement *string `json:"problem_statement"`
}

type TeamListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Name     string `form:"name"`
}

type TeamListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.Team `json:"items"`
}

// Create creates a team with the requester as leader and sole member.
func (s *TeamService) Create(userID uint, req *CreateTeamRequest) (*models.Team, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, response.NewBadRequest("team name is required")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if user.TeamID != nil {
		return nil, ErrAlreadyInTeam
	}

	var count int64
	s.db.Model(&models.Team{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return nil, ErrNameTaken
	}

	team := models.Team{
		Name:             req.Name,
		LeaderID:         userID,
		ProblemTitle:     req.ProblemTitle,
		ProblemStatement: req.ProblemStatement,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrNameTaken
			}
			return err
		}
		// the requester may have joined another team since the check above
		res := tx.Model(&models.User{}).Where("id = ? AND team_id IS NULL", userID).Update("team_id", team.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyInTeam
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(team.ID)
}

// GetByID returns a team with its members loaded.
func (s *TeamService) GetByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := s.db.Preload("Members").First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

// GetForUser returns the team the given user belongs to.
func (s *TeamService) GetForUser(userID uint) (*models.Team, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if user.TeamID == nil {
		return nil, ErrNotInTeam
	}
	return s.GetByID(*user.TeamID)
}

// List returns paginated teams with members loaded.
func (s *TeamService) List(req *TeamListRequest) (*TeamListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Team{})
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}

	var total int64
	query.Count(&total)

	var teams []models.Team
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Members").Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&teams).Error; err != nil {
		return nil, err
	}

	return &TeamListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    teams,
	}, nil
}

// Update edits name and problem statement. Leader only.
func (s *TeamService) Update(userID, teamID uint, req *UpdateTeamRequest) (*models.Team, error) {
	team, err := s.leaderTeam(userID, teamID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" && req.Name != team.Name {
		var count int64
		s.db.Model(&models.Team{}).Where("name = ? AND id <> ?", req.Name, teamID).Count(&count)
		if count > 0 {
			return nil, ErrNameTaken
		}
		updates["name"] = req.Name
	}
	if req.ProblemTitle != nil {
		updates["problem_title"] = *req.ProblemTitle
	}
	if req.ProblemStatement != nil {
		updates["problem_statement"] = *req.ProblemStatement
	}

	if len(updates) > 0 {
		if err := s.db.Model(team).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return nil, ErrNameTaken
			}
			return nil, err
		}
	}

	return s.GetByID(teamID)
}

// SetLogo stores the new logo key and releases the previous blob so an
// overwrite never orphans storage.
func (s *TeamService) SetLogo(userID, teamID uint, key string) (*models.Team, error) {
	team, err := s.leaderTeam(userID, teamID)
	if err != nil {
		return nil, err
	}

	oldKey := team.Logo
	if err := s.db.Model(team).Update("logo", key).Error; err != nil {
		return nil, err
	}

	if oldKey != "" && oldKey != key {
		if err := s.store.Delete(oldKey); err != nil {
			logger.Warn().Err(err).Str("key", oldKey).Msg("failed to release replaced team logo")
		}
	}

	return s.GetByID(teamID)
}

// Delete disbands the team: every member's affiliation is cleared and all
// pending join requests and invitations referencing the team are removed in
// one transaction, so no member ever observes a half-deleted team.
func (s *TeamService) Delete(userID, teamID uint) error {
	team, err := s.leaderTeam(userID, teamID)
	if err != nil {
		return err
	}

	unlock := admissionLocks.Lock(teamID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("team_id = ?", teamID).Update("team_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.JoinRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, teamID).Error
	})
	if err != nil {
		return err
	}

	admissionLocks.Forget(teamID)

	if team.Logo != "" {
		if err := s.store.Delete(team.Logo); err != nil {
			logger.Warn().Err(err).Str("key", team.Logo).Msg("failed to release logo of deleted team")
		}
	}
	return nil
}

// RemoveMember force-removes a member. Leader only; the leader cannot remove
// themselves.
func (s *TeamService) RemoveMember(userID, teamID, memberID uint) (*models.Team, error) {
	team, err := s.leaderTeam(userID, teamID)
	if err != nil {
		return nil, err
	}
	if memberID == team.LeaderID {
		return nil, ErrCannotRemoveLeader
	}

	res := s.db.Model(&models.User{}).Where("id = ? AND team_id = ?", memberID, teamID).Update("team_id", nil)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrMemberNotFound
	}

	return s.GetByID(teamID)
}

// Leave removes the requester from their current team. The leader cannot
// leave, only delete.
func (s *TeamService) Leave(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return ErrUserNotFound
	}
	if user.TeamID == nil {
		return ErrNotInTeam
	}

	var team models.Team
	if err := s.db.First(&team, *user.TeamID).Error; err != nil {
		return ErrTeamNotFound
	}
	if team.LeaderID == userID {
		return ErrLeaderMustDelete
	}

	return s.db.Model(&user).Update("team_id", nil).Error
}

// leaderTeam loads a team and verifies the caller is its leader.
func (s *TeamService) leaderTeam(userID, teamID uint) (*models.Team, error) {
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

// isDuplicateKey reports whether err is a unique-constraint violation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
