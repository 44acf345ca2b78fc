package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/logger"
	"github.com/codingclub/hackportal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrResourceNotFound  = response.NewNotFound("resource not found")
	ErrNotSubmitter      = response.NewForbidden("only the submitter or an admin can do this")
	ErrURLAndFile        = response.NewBadRequest("a resource is either a link or a file, not both")
	ErrNoContent         = response.NewBadRequest("a resource needs a link or a file")
	ErrRejectNeedsReason = response.NewBadRequest("a rejection requires a reason")
)

// ResourceService owns the resource submission and moderation workflow.
// Submissions start pending; only approved resources are publicly visible.
type ResourceService struct {
	db    *gorm.DB
	store BlobStore
}

func NewResourceService(db *gorm.DB, store BlobStore) *ResourceService {
	return &ResourceService{db: db, store: store}
}

type SubmitResourceRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	URL         string `json:"url"`
}

// FileUpload describes an incoming file. The service stores it and fills the
// resource's file descriptor.
type FileUpload struct {
	Name string
	Type string
	Size int64
	Body io.Reader
}

type ResourceListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Category string `form:"category"`
	Status   string `form:"status"`
	Search   string `form:"search"`
}

type ResourceListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []models.Resource `json:"items"`
}

// UpdateResourceRequest patches the descriptive fields only. Category and
// status are fixed after submission; status moves through moderation.
type UpdateResourceRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Submit records a new pending resource. Exactly one of req.URL and file must
// be provided; the check runs before anything is persisted or stored.
func (s *ResourceService) Submit(userID uint, req *SubmitResourceRequest, file *FileUpload) (*models.Resource, error) {
	if req.URL != "" && file != nil {
		return nil, ErrURLAndFile
	}
	if req.URL == "" && file == nil {
		return nil, ErrNoContent
	}

	resource := models.Resource{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		URL:         req.URL,
		Status:      models.ResourceStatusPending,
		SubmittedBy: userID,
	}

	if file != nil {
		key := NewBlobKey(file.Name)
		url, err := s.store.Save(key, file.Body)
		if err != nil {
			return nil, err
		}
		resource.FileKey = key
		resource.FileName = file.Name
		resource.FileType = file.Type
		resource.FileSize = file.Size
		resource.ViewURL = url
		resource.DownloadURL = url
	}

	if err := s.db.Create(&resource).Error; err != nil {
		if resource.FileKey != "" {
			if derr := s.store.Delete(resource.FileKey); derr != nil {
				logger.Warn().Err(derr).Str("key", resource.FileKey).Msg("failed to release blob of failed submission")
			}
		}
		return nil, err
	}
	return &resource, nil
}

// GetByID returns a single resource.
func (s *ResourceService) GetByID(id uint) (*models.Resource, error) {
	var resource models.Resource
	if err := s.db.First(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return &resource, nil
}

// ListPublic returns approved resources only, newest first.
func (s *ResourceService) ListPublic(req *ResourceListRequest) (*ResourceListResponse, error) {
	req.Status = models.ResourceStatusApproved
	return s.list(req)
}

// ListAll returns resources in any status, for moderators.
func (s *ResourceService) ListAll(req *ResourceListRequest) (*ResourceListResponse, error) {
	return s.list(req)
}

// ListMine returns the caller's own submissions in any status.
func (s *ResourceService) ListMine(userID uint, req *ResourceListRequest) (*ResourceListResponse, error) {
	return s.list(req, func(q *gorm.DB) *gorm.DB {
		return q.Where("submitted_by = ?", userID)
	})
}

func (s *ResourceService) list(req *ResourceListRequest, scopes ...func(*gorm.DB) *gorm.DB) (*ResourceListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Resource{})
	for _, scope := range scopes {
		query = scope(query)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var resources []models.Resource
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&resources).Error; err != nil {
		return nil, err
	}

	return &ResourceListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    resources,
	}, nil
}

// Approve marks a resource approved. Approving an already-approved resource
// is a no-op so repeated moderator clicks are harmless.
func (s *ResourceService) Approve(adminID, id uint) (*models.Resource, error) {
	resource, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if resource.Status == models.ResourceStatusApproved {
		return resource, nil
	}

	updates := map[string]interface{}{
		"status":        models.ResourceStatusApproved,
		"approved_by":   adminID,
		"reject_reason": "",
	}
	if err := s.db.Model(resource).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.notifySubmitter(resource, "was approved and is now public.")
	return s.GetByID(id)
}

// Reject marks a resource rejected with the given reason. A previously
// approved resource can be rejected, which withdraws it from the public list
// and clears the approval record.
func (s *ResourceService) Reject(adminID, id uint, reason string) (*models.Resource, error) {
	if reason == "" {
		return nil, ErrRejectNeedsReason
	}

	resource, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":        models.ResourceStatusRejected,
		"reject_reason": reason,
		"approved_by":   nil,
	}
	if err := s.db.Model(resource).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.notifySubmitter(resource, "was rejected. Reason: "+reason)
	return s.GetByID(id)
}

// Update edits title and description. Allowed for the submitter and admins;
// category, content (URL or file) and moderation status are not editable here.
func (s *ResourceService) Update(userID uint, isAdmin bool, id uint, req *UpdateResourceRequest) (*models.Resource, error) {
	resource, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && resource.SubmittedBy != userID {
		return nil, ErrNotSubmitter
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(resource).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

// Delete removes a resource and releases its blob. Allowed for the submitter
// and admins. The record goes first; a blob that fails to delete is logged
// and left for cleanup rather than resurrecting the record.
func (s *ResourceService) Delete(userID uint, isAdmin bool, id uint) error {
	resource, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if !isAdmin && resource.SubmittedBy != userID {
		return ErrNotSubmitter
	}

	if err := s.db.Delete(resource).Error; err != nil {
		return err
	}

	if resource.HasFile() {
		if err := s.store.Delete(resource.FileKey); err != nil {
			logger.Warn().Err(err).Str("key", resource.FileKey).Msg("failed to release blob of deleted resource")
		}
	}
	return nil
}

// BulkDeleteResult reports per-item outcomes of a bulk delete.
type BulkDeleteResult struct {
	Deleted []uint          `json:"deleted"`
	Failed  map[uint]string `json:"failed,omitempty"`
}

// BulkDelete deletes each listed resource independently; one failure does not
// abort the rest.
func (s *ResourceService) BulkDelete(adminID uint, ids []uint) *BulkDeleteResult {
	result := &BulkDeleteResult{Failed: make(map[uint]string)}
	for _, id := range ids {
		if err := s.Delete(adminID, true, id); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result
}

// PendingCount returns the number of resources awaiting moderation.
func (s *ResourceService) PendingCount() (int64, error) {
	var count int64
	err := s.db.Model(&models.Resource{}).Where("status = ?", models.ResourceStatusPending).Count(&count).Error
	return count, err
}

func (s *ResourceService) notifySubmitter(resource *models.Resource, outcome string) {
	var submitter models.User
	if err := s.db.First(&submitter, resource.SubmittedBy).Error; err != nil || submitter.Email == "" {
		return
	}
	body := fmt.Sprintf("Your resource %q %s", resource.Title, outcome)
	EnqueueMail([]string{submitter.Email}, "Resource review result", body)
}
