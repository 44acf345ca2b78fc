package services

import (
	"errors"

	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrIdeaNotFound    = response.NewNotFound("idea not found")
	ErrCommentNotFound = response.NewNotFound("comment not found")
	ErrNotAuthor       = response.NewForbidden("only the author or an admin can do this")
)

// IdeaService owns the public idea board.
type IdeaService struct {
	db *gorm.DB
}

func NewIdeaService(db *gorm.DB) *IdeaService {
	return &IdeaService{db: db}
}

type PostIdeaRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

type UpdateIdeaRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

type PostCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

type IdeaListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Search   string `form:"search"`
	AuthorID uint   `form:"author_id"`
}

type IdeaListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.Idea `json:"items"`
}

// Post creates a new idea.
func (s *IdeaService) Post(authorID uint, req *PostIdeaRequest) (*models.Idea, error) {
	idea := models.Idea{
		Title:    req.Title,
		Body:     req.Body,
		AuthorID: authorID,
	}
	if err := s.db.Create(&idea).Error; err != nil {
		return nil, err
	}
	return s.GetByID(idea.ID)
}

// GetByID returns an idea with author and comments loaded.
func (s *IdeaService) GetByID(id uint) (*models.Idea, error) {
	var idea models.Idea
	err := s.db.Preload("Author").Preload("Comments").Preload("Comments.Author").First(&idea, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdeaNotFound
		}
		return nil, err
	}
	return &idea, nil
}

// List returns paginated ideas, newest first.
func (s *IdeaService) List(req *IdeaListRequest) (*IdeaListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Idea{})
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("title LIKE ? OR body LIKE ?", like, like)
	}
	if req.AuthorID != 0 {
		query = query.Where("author_id = ?", req.AuthorID)
	}

	var total int64
	query.Count(&total)

	var ideas []models.Idea
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Author").Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&ideas).Error; err != nil {
		return nil, err
	}

	return &IdeaListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    ideas,
	}, nil
}

// Update edits an idea. Author or admin only.
func (s *IdeaService) Update(userID uint, isAdmin bool, id uint, req *UpdateIdeaRequest) (*models.Idea, error) {
	var idea models.Idea
	if err := s.db.First(&idea, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdeaNotFound
		}
		return nil, err
	}
	if !isAdmin && idea.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}
	if len(updates) > 0 {
		if err := s.db.Model(&idea).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

// Delete removes an idea and its comments. Author or admin only.
func (s *IdeaService) Delete(userID uint, isAdmin bool, id uint) error {
	var idea models.Idea
	if err := s.db.First(&idea, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIdeaNotFound
		}
		return err
	}
	if !isAdmin && idea.AuthorID != userID {
		return ErrNotAuthor
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("idea_id = ?", id).Delete(&models.IdeaComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&idea).Error
	})
}

// Comment adds a comment to an idea.
func (s *IdeaService) Comment(userID, ideaID uint, req *PostCommentRequest) (*models.IdeaComment, error) {
	var idea models.Idea
	if err := s.db.First(&idea, ideaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdeaNotFound
		}
		return nil, err
	}

	comment := models.IdeaComment{
		IdeaID:   ideaID,
		AuthorID: userID,
		Body:     req.Body,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment. Comment author, idea author or admin.
func (s *IdeaService) DeleteComment(userID uint, isAdmin bool, ideaID, commentID uint) error {
	var comment models.IdeaComment
	if err := s.db.Where("id = ? AND idea_id = ?", commentID, ideaID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if !isAdmin && comment.AuthorID != userID {
		var idea models.Idea
		if err := s.db.First(&idea, ideaID).Error; err != nil || idea.AuthorID != userID {
			return ErrNotAuthor
		}
	}

	return s.db.Delete(&comment).Error
}
