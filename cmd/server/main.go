package main

import (
	"os"

	"github.com/codingclub/hackportal/internal/config"
	"github.com/codingclub/hackportal/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logger.Init(level)
	} else if cfg.Server.Mode == "debug" {
		logger.Init("debug")
	}

	// Initialize database, services and schedulers
	svc := bootstrap(cfg)
	defer svc.shutdown()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Create router and register routes
	r := gin.New()
	registerRoutes(r, cfg, svc)

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
