package models

import (
	"time"

	"gorm.io/gorm"
)

// Update source values
const (
	UpdateSourceManual  = "manual"
	UpdateSourceScraped = "scraped"
)

// Update is an official announcement, either posted by an admin or imported
// from the external feed. SourceHash content-addresses scraped records so the
// importer can re-run without duplicating.
type Update struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Body        string         `gorm:"type:text" json:"body"`
	URL         string         `gorm:"size:500" json:"url"`
	Source      string         `gorm:"size:20;default:manual" json:"source"` // manual, scraped
	SourceHash  string         `gorm:"uniqueIndex;size:64" json:"-"`
	PublishedAt time.Time      `gorm:"index" json:"published_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
