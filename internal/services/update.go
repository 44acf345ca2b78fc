package services

import (
	"errors"
	"time"

	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/response"
	"gorm.io/gorm"
)

var ErrUpdateNotFound = response.NewNotFound("update not found")

// UpdateService owns the announcement board: admin-posted updates plus the
// records the feed importer creates.
type UpdateService struct {
	db *gorm.DB
}

func NewUpdateService(db *gorm.DB) *UpdateService {
	return &UpdateService{db: db}
}

type PostUpdateRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

type UpdateListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Source   string `form:"source"`
}

type UpdateListResponse struct {
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Items    []models.Update `json:"items"`
}

// Post creates a manual announcement. Manual posts get a content hash too,
// keyed by publication time, so the unique source_hash index never collides.
func (s *UpdateService) Post(req *PostUpdateRequest) (*models.Update, error) {
	now := time.Now()
	update := models.Update{
		Title:       req.Title,
		Body:        req.Body,
		URL:         req.URL,
		Source:      models.UpdateSourceManual,
		SourceHash:  ComputeSourceHash(req.Title, req.URL, now.Format(time.RFC3339Nano)),
		PublishedAt: now,
	}
	if err := s.db.Create(&update).Error; err != nil {
		return nil, err
	}
	return &update, nil
}

// GetByID returns a single update.
func (s *UpdateService) GetByID(id uint) (*models.Update, error) {
	var update models.Update
	if err := s.db.First(&update, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUpdateNotFound
		}
		return nil, err
	}
	return &update, nil
}

// List returns paginated updates, most recently published first.
func (s *UpdateService) List(req *UpdateListRequest) (*UpdateListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Update{})
	if req.Source != "" {
		query = query.Where("source = ?", req.Source)
	}

	var total int64
	query.Count(&total)

	var updates []models.Update
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("published_at DESC").Offset(offset).Limit(req.PageSize).Find(&updates).Error; err != nil {
		return nil, err
	}

	return &UpdateListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    updates,
	}, nil
}

// Delete removes an update.
func (s *UpdateService) Delete(id uint) error {
	res := s.db.Delete(&models.Update{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUpdateNotFound
	}
	return nil
}
