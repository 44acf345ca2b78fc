package models

import (
	"fmt"

	"github.com/codingclub/hackportal/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&AllowedRoll{},
		&Team{},
		&JoinRequest{},
		&Invitation{},
		&Resource{},
		&Idea{},
		&IdeaComment{},
		&Update{},
		&SystemConfig{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default data if not exists
func SeedDefaultData() error {
	defaultConfigs := []SystemConfig{
		{Key: "email_enabled", Value: "false", Type: "bool", Group: "email", Label: "Enable Email Notifications"},
		{Key: "email_host", Value: "", Type: "string", Group: "email", Label: "SMTP Host"},
		{Key: "email_port", Value: "587", Type: "int", Group: "email", Label: "SMTP Port"},
		{Key: "email_username", Value: "", Type: "string", Group: "email", Label: "SMTP Username"},
		{Key: "email_password", Value: "", Type: "string", Group: "email", Label: "SMTP Password"},
		{Key: "email_from", Value: "", Type: "string", Group: "email", Label: "From Address"},
		{Key: "email_use_tls", Value: "false", Type: "bool", Group: "email", Label: "Use SSL/TLS"},
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System Log Retention Days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		DB.Model(&SystemConfig{}).Where("key = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// TableName overrides
func (User) TableName() string         { return "users" }
func (AllowedRoll) TableName() string  { return "allowed_rolls" }
func (Team) TableName() string         { return "teams" }
func (JoinRequest) TableName() string  { return "join_requests" }
func (Invitation) TableName() string   { return "invitations" }
func (Resource) TableName() string     { return "resources" }
func (Idea) TableName() string         { return "ideas" }
func (IdeaComment) TableName() string  { return "idea_comments" }
func (Update) TableName() string       { return "updates" }
func (SystemConfig) TableName() string { return "system_configs" }
func (SystemLog) TableName() string    { return "system_logs" }
