package services

import (
	"strconv"

	"github.com/codingclub/hackportal/internal/models"
	"gorm.io/gorm"
)

// SystemConfigService reads and writes key/value settings stored in the database.
type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) GetString(key, fallback string) string {
	var cfg models.SystemConfig
	if err := s.db.Where("key = ?", key).First(&cfg).Error; err != nil {
		return fallback
	}
	return cfg.Value
}

func (s *SystemConfigService) GetInt(key string, fallback int) int {
	v := s.GetString(key, "")
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return fallback
}

func (s *SystemConfigService) GetBool(key string, fallback bool) bool {
	v := s.GetString(key, "")
	if v == "" {
		return fallback
	}
	return v == "true"
}

// Set updates an existing key or creates it.
func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("key = ?", key).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(&models.SystemConfig{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

// ListGroup returns all settings in a config group.
func (s *SystemConfigService) ListGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	err := s.db.Where("`group` = ?", group).Order("key ASC").Find(&configs).Error
	return configs, err
}
