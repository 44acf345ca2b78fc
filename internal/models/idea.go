package models

import (
	"time"

	"gorm.io/gorm"
)

// Idea is an entry on the public idea board.
type Idea struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	AuthorID  uint           `gorm:"index;not null" json:"author_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author   *User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Comments []IdeaComment `gorm:"foreignKey:IdeaID" json:"comments,omitempty"`
}

// IdeaComment is a comment on an idea.
type IdeaComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IdeaID    uint      `gorm:"index;not null" json:"idea_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
