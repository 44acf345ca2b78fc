package services

import (
	"strings"

	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/response"
	"gorm.io/gorm"
)

var ErrRollNotFound = response.NewNotFound("roll number not on the allowlist")

// UserService covers the admin-side account operations: verification, role
// changes and the roll-number allowlist.
type UserService struct {
	db    *gorm.DB
	teams *TeamService
}

func NewUserService(db *gorm.DB, store BlobStore) *UserService {
	return &UserService{db: db, teams: NewTeamService(db, store)}
}

type UserListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Search   string `form:"search"`
	Role     string `form:"role"`
	Verified *bool  `form:"verified"`
	Teamless bool   `form:"teamless"`
}

type UserListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.User `json:"items"`
}

// List returns paginated users with optional filters. The teamless filter
// backs the leader-side invite picker.
func (s *UserService) List(req *UserListRequest) (*UserListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.User{})
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR roll_number LIKE ?", like, like, like)
	}
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}
	if req.Verified != nil {
		query = query.Where("is_verified = ?", *req.Verified)
	}
	if req.Teamless {
		query = query.Where("team_id IS NULL")
	}

	var total int64
	query.Count(&total)

	var users []models.User
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&users).Error; err != nil {
		return nil, err
	}

	return &UserListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    users,
	}, nil
}

// Verify marks an account verified. Verifying twice is a no-op.
func (s *UserService) Verify(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if user.IsVerified {
		return &user, nil
	}

	if err := s.db.Model(&user).Update("is_verified", true).Error; err != nil {
		return nil, err
	}

	EnqueueMail([]string{user.Email}, "Account verified",
		"Your account has been verified. You can log in and start forming a team.")
	user.IsVerified = true
	return &user, nil
}

// SetRole changes an account's role.
func (s *UserService) SetRole(userID uint, role string) (*models.User, error) {
	switch role {
	case models.RoleStudent, models.RoleSpoc, models.RoleJudge, models.RoleAdmin:
	default:
		return nil, response.NewBadRequest("unknown role")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if err := s.db.Model(&user).Update("role", role).Error; err != nil {
		return nil, err
	}
	user.Role = role
	return &user, nil
}

// Delete removes an account and severs its team affiliation first: deleting a
// leader disbands their team (same cascade as a leader-initiated delete),
// deleting a plain member behaves as a forced leave. Either way no surviving
// row keeps a reference to the deleted account's membership.
func (s *UserService) Delete(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return ErrUserNotFound
	}

	if user.TeamID != nil {
		var team models.Team
		if err := s.db.First(&team, *user.TeamID).Error; err == nil {
			if team.LeaderID == userID {
				if err := s.teams.Delete(userID, team.ID); err != nil {
					return err
				}
			} else if err := s.db.Model(&user).Update("team_id", nil).Error; err != nil {
				return err
			}
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.JoinRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// --- Roll-number allowlist ---

// ListRolls returns the full allowlist.
func (s *UserService) ListRolls() ([]models.AllowedRoll, error) {
	var rolls []models.AllowedRoll
	err := s.db.Order("roll ASC").Find(&rolls).Error
	return rolls, err
}

// AddRolls adds roll numbers to the allowlist, skipping blanks and entries
// already present. Returns how many were added.
func (s *UserService) AddRolls(rolls []string) (int, error) {
	added := 0
	for _, roll := range rolls {
		roll = strings.TrimSpace(roll)
		if roll == "" {
			continue
		}
		err := s.db.Create(&models.AllowedRoll{Roll: roll}).Error
		if err != nil {
			if isDuplicateKey(err) {
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}

// RemoveRoll deletes one roll number from the allowlist.
func (s *UserService) RemoveRoll(roll string) error {
	res := s.db.Where("roll = ?", roll).Delete(&models.AllowedRoll{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRollNotFound
	}
	return nil
}
