package services

import (
	"errors"
	"strings"
	"time"

	"github.com/codingclub/hackportal/internal/config"
	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/internal/utils"
	"github.com/codingclub/hackportal/pkg/logger"
	"github.com/codingclub/hackportal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrBadCredentials = response.NewUnauthorized("invalid email or password")
	ErrNotVerified    = response.NewForbidden("account pending verification")
	ErrEmailTaken     = response.NewConflict("an account with this email already exists")
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Name       string `json:"name" binding:"required"`
	Gender     string `json:"gender" binding:"required,oneof=male female other"`
	Year       int    `json:"year"`
	RollNumber string `json:"roll_number"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token    string       `json:"token"`
	ExpireAt time.Time    `json:"expire_at"`
	User     *models.User `json:"user"`
}

// Register creates a new account. Accounts whose roll number is on the
// allowlist are verified immediately; everyone else waits for an admin.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:      email,
		Password:   hashedPassword,
		Name:       req.Name,
		Gender:     req.Gender,
		Year:       req.Year,
		RollNumber: req.RollNumber,
		Role:       models.RoleStudent,
		IsVerified: s.isRollAllowed(req.RollNumber),
	}

	if err := s.db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if user.IsVerified {
		EnqueueMail([]string{user.Email}, "Welcome aboard",
			"Your account has been verified. You can log in and start forming a team.")
	}
	return &user, nil
}

// Login authenticates a verified user and returns a JWT.
func (s *AuthService) Login(req *LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, ErrBadCredentials
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	expireHours := s.jwtConfig.ExpireHour
	token, err := utils.GenerateToken(user.ID, user.Name, user.Role, expireHours)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Save(&user)

	return &LoginResult{
		Token:    token,
		ExpireAt: now.Add(time.Duration(expireHours) * time.Hour),
		User:     &user,
	}, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Gender *string `json:"gender" binding:"omitempty,oneof=male female other"`
	Year   *int    `json:"year"`
}

// UpdateProfile edits the caller's own profile fields.
func (s *AuthService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(userID)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return response.NewBadRequest("incorrect old password")
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.db.Save(user).Error
}

// CreateAdminIfNotExists creates the default admin account on first boot.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)

	if count == 0 {
		hashedPassword, err := utils.HashPassword("admin")
		if err != nil {
			return err
		}

		admin := models.User{
			Email:      "admin@localhost",
			Password:   hashedPassword,
			Name:       "Administrator",
			Role:       models.RoleAdmin,
			IsVerified: true,
		}

		if err := s.db.Create(&admin).Error; err != nil {
			return err
		}
		logger.Infof("[Auth] Default admin account created, change its password")
	}

	return nil
}

func (s *AuthService) isRollAllowed(roll string) bool {
	if roll == "" {
		return false
	}
	var count int64
	s.db.Model(&models.AllowedRoll{}).Where("roll = ?", roll).Count(&count)
	return count > 0
}
