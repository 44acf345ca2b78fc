package main

import (
	"github.com/codingclub/hackportal/internal/config"
	"github.com/codingclub/hackportal/internal/handlers"
	"github.com/codingclub/hackportal/internal/middleware"
	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public auth endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "hackportal"})
	})

	// Uploaded blobs (resource files, team logos)
	r.Static(cfg.Storage.BaseURL, cfg.Storage.Dir)

	db := models.GetDB()
	teamHandler := handlers.NewTeamHandler(db, svc.store)
	resourceHandler := handlers.NewResourceHandler(db, svc.store)
	ideaHandler := handlers.NewIdeaHandler(db)
	updateHandler := handlers.NewUpdateHandler(db, svc.scraperService)
	userHandler := handlers.NewUserHandler(db, svc.store)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Public reads
		api.GET("/updates", updateHandler.List)
		api.GET("/updates/:id", updateHandler.GetByID)
		api.GET("/resources", resourceHandler.List)
		api.GET("/resources/:id", resourceHandler.GetByID)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/profile", svc.authHandler.Profile)
			protected.PUT("/auth/profile", svc.authHandler.UpdateProfile)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Teams
			protected.GET("/teams", teamHandler.List)
			protected.GET("/teams/my-team", teamHandler.MyTeam)
			protected.GET("/teams/:id", teamHandler.GetByID)
			protected.POST("/teams", teamHandler.Create)
			protected.PUT("/teams/:id", teamHandler.Update)
			protected.POST("/teams/:id/logo", teamHandler.UploadLogo)
			protected.DELETE("/teams/:id", teamHandler.Delete)
			protected.DELETE("/teams/members/leave", teamHandler.Leave)
			protected.DELETE("/teams/:id/members/:user_id", teamHandler.RemoveMember)

			// Join requests
			protected.POST("/teams/:id/join", teamHandler.RequestJoin)
			protected.POST("/teams/:id/cancel-request", teamHandler.CancelJoin)
			protected.GET("/teams/:id/requests", teamHandler.PendingRequests)
			protected.POST("/teams/:id/approve/:user_id", teamHandler.ApproveRequest)
			protected.POST("/teams/:id/reject/:user_id", teamHandler.RejectRequest)

			// Invitations
			protected.POST("/teams/:id/invitations", teamHandler.Invite)
			protected.GET("/invitations", teamHandler.MyInvitations)
			protected.POST("/invitations/:id/accept", teamHandler.AcceptInvitation)
			protected.POST("/invitations/:id/reject", teamHandler.RejectInvitation)
			protected.DELETE("/invitations/:id", teamHandler.CancelInvitation)

			// Resources
			protected.GET("/resources/mine", resourceHandler.ListMine)
			protected.POST("/resources", resourceHandler.Submit)
			protected.POST("/resources/upload", resourceHandler.Upload)
			protected.PUT("/resources/:id", resourceHandler.Update)
			protected.DELETE("/resources/:id", resourceHandler.Delete)

			// Ideas
			protected.GET("/ideas", ideaHandler.List)
			protected.GET("/ideas/:id", ideaHandler.GetByID)
			protected.POST("/ideas", ideaHandler.Create)
			protected.PUT("/ideas/:id", ideaHandler.Update)
			protected.DELETE("/ideas/:id", ideaHandler.Delete)
			protected.POST("/ideas/:id/comments", ideaHandler.Comment)
			protected.DELETE("/ideas/:id/comments/:comment_id", ideaHandler.DeleteComment)

			// Users (teamless filter backs the invite picker)
			protected.GET("/users", userHandler.List)
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Dashboard
			dashboardHandler := handlers.NewDashboardHandler(db)
			admin.GET("/dashboard/stats", dashboardHandler.GetStats)

			// Resource moderation
			admin.GET("/resources", resourceHandler.ListAll)
			admin.POST("/resources/:id/approve", resourceHandler.Approve)
			admin.POST("/resources/:id/reject", resourceHandler.Reject)
			admin.DELETE("/resources/:id", resourceHandler.Delete)
			admin.POST("/resources/bulk-delete", resourceHandler.BulkDelete)

			// Announcements
			admin.POST("/updates", updateHandler.Create)
			admin.DELETE("/updates/:id", updateHandler.Delete)
			admin.POST("/updates/scrape", updateHandler.Scrape)

			// Users
			admin.POST("/users/:id/verify", userHandler.Verify)
			admin.PUT("/users/:id/role", userHandler.SetRole)
			admin.DELETE("/users/:id", userHandler.Delete)

			// Roll-number allowlist
			admin.GET("/roll-numbers", userHandler.ListRolls)
			admin.POST("/roll-numbers", userHandler.AddRolls)
			admin.DELETE("/roll-numbers/:roll", userHandler.RemoveRoll)

			// System logs
			systemLogHandler := handlers.NewSystemLogHandler(db)
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/retention", systemLogHandler.GetRetentionDays)
			admin.PUT("/system-logs/retention", systemLogHandler.SetRetentionDays)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)
		}
	}
}
