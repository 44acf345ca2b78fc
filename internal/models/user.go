package models

import (
	"time"

	"gorm.io/gorm"
)

// Gender values
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Role values
const (
	RoleStudent = "student"
	RoleSpoc    = "spoc"
	RoleJudge   = "judge"
	RoleAdmin   = "admin"
)

// User represents a registered participant. TeamID is the single-affiliation
// reference: a user belongs to at most one team, and membership is defined as
// the set of users pointing at the team.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Email      string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password   string         `gorm:"size:255" json:"-"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	Gender     string         `gorm:"size:20;default:other" json:"gender"` // male, female, other
	Year       int            `json:"year"`
	RollNumber string         `gorm:"size:50;index" json:"roll_number"`
	IsVerified bool           `gorm:"default:false" json:"is_verified"`
	Role       string         `gorm:"size:50;default:student" json:"role"` // student, spoc, judge, admin
	TeamID     *uint          `gorm:"index" json:"team_id"`
	Avatar     string         `gorm:"size:255" json:"avatar"` // blob key
	LastLogin  *time.Time     `json:"last_login"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// RollNumber entries form the pre-approved allowlist. Registrations whose roll
// number appears here are verified automatically; everyone else waits for an
// admin.
type AllowedRoll struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Roll      string    `gorm:"uniqueIndex;size:50;not null" json:"roll"`
	CreatedAt time.Time `json:"created_at"`
}
