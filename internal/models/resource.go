package models

import (
	"time"

	"gorm.io/gorm"
)

// Resource status values
const (
	ResourceStatusPending  = "pending"
	ResourceStatusApproved = "approved"
	ResourceStatusRejected = "rejected"
)

// Resource is a submitted link or uploaded file awaiting moderation. Exactly
// one of URL / FileKey is populated.
type Resource struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:100;index" json:"category"`
	URL         string `gorm:"size:500" json:"url"`

	// File descriptor, set only for uploaded submissions
	FileKey     string `gorm:"size:255" json:"file_key"`
	FileName    string `gorm:"size:255" json:"file_name"`
	FileType    string `gorm:"size:100" json:"file_type"`
	FileSize    int64  `json:"file_size"`
	ViewURL     string `gorm:"size:500" json:"view_url"`
	DownloadURL string `gorm:"size:500" json:"download_url"`

	Status       string `gorm:"size:20;default:pending;index" json:"status"` // pending, approved, rejected
	RejectReason string `gorm:"size:500" json:"reject_reason"`
	ApprovedBy   *uint  `json:"approved_by"`
	SubmittedBy  uint   `gorm:"index;not null" json:"submitted_by"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasFile reports whether the resource carries an uploaded file.
func (r *Resource) HasFile() bool { return r.FileKey != "" }
