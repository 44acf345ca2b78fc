package main

import (
	"context"

	"github.com/codingclub/hackportal/internal/config"
	"github.com/codingclub/hackportal/internal/handlers"
	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/internal/services"
	"github.com/codingclub/hackportal/internal/utils"
	"github.com/codingclub/hackportal/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	store          services.BlobStore
	scraperService *services.ScraperService
	mailQueue      services.MailQueue
	worker         *services.Worker
	authHandler    *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// Initialize blob storage
	store, err := services.NewLocalStore(&cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize blob storage: %v", err)
	}

	// Initialize mail queue (uses Redis if enabled, otherwise sync mode)
	emailService := services.NewEmailService(models.GetDB())
	deliver := func(ctx context.Context, task *services.MailTask) error {
		return emailService.Send(task.Recipients, task.Subject, task.Body)
	}
	mailQueue := services.InitMailQueue(cfg)
	if syncQueue, ok := mailQueue.(*services.SyncMailQueue); ok {
		syncQueue.SetSender(deliver)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetSender(deliver)
			worker.Start()
		}
	}

	// Start the announcement feed importer
	scraperService := services.NewScraperService(models.GetDB(), &cfg.Scraper)
	scraperService.StartScheduler()

	// Create default admin user
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		store:          store,
		scraperService: scraperService,
		mailQueue:      mailQueue,
		worker:         worker,
		authHandler:    authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.scraperService.StopScheduler()
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.mailQueue != nil {
		s.mailQueue.Close()
	}
}
