package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxTeamSize caps team membership, leader included.
const MaxTeamSize = 6

// Invitation status values
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRejected = "rejected"
)

// Team is owned by its leader. Members are users whose TeamID points here;
// the leader is always one of them and can only leave by deleting the team.
type Team struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	LeaderID         uint           `gorm:"index;not null" json:"leader_id"`
	ProblemTitle     string         `gorm:"size:255" json:"problem_title"`
	ProblemStatement string         `gorm:"type:text" json:"problem_statement"`
	Logo             string         `gorm:"size:255" json:"logo"` // blob key
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Members []User `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// JoinRequest is a user-initiated intent to join a team, pending until the
// leader decides. Resolved requests are deleted, so existence means pending.
type JoinRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"uniqueIndex:idx_join_team_user;not null" json:"team_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_join_team_user;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Invitation is the leader-initiated counterpart to a join request, resolved
// by the invitee.
type Invitation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"index;not null" json:"team_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	InvitedBy uint      `gorm:"not null" json:"invited_by"`
	Status    string    `gorm:"size:20;default:pending" json:"status"` // pending, accepted, rejected
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}
