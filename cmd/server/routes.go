package main

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/handlers"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	// Rate limiter for the public auth endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	db := models.GetDB()
	projectHandler := handlers.NewProjectHandler(db)
	memberHandler := handlers.NewProjectMemberHandler(db)
	invitationHandler := handlers.NewInvitationHandler(db)
	taskHandler := handlers.NewTaskHandler(db)
	userHandler := handlers.NewUserHandler(db)
	configHandler := handlers.NewSystemConfigHandler(db)
	systemLogHandler := handlers.NewSystemLogHandler(db)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Invite link lookup (public, so invitees can preview before login)
		api.GET("/invitations/lookup", invitationHandler.Lookup)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.PUT("/auth/password", svc.authHandler.ChangePassword)

			// Users
			protected.GET("/users/search", userHandler.Search)
			protected.GET("/users/:id", userHandler.GetByID)

			// Projects
			protected.GET("/projects", projectHandler.List)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.POST("/projects/:id/archive", projectHandler.Archive)
			protected.POST("/projects/:id/restore", projectHandler.Restore)
			protected.POST("/projects/:id/transfer", projectHandler.TransferOwnership)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Project members
			protected.GET("/projects/:id/members", memberHandler.List)
			protected.POST("/projects/:id/members", memberHandler.Add)
			protected.PUT("/projects/:id/members/:userId", memberHandler.UpdateRole)
			protected.DELETE("/projects/:id/members/:userId", memberHandler.Remove)

			// Invitations
			protected.POST("/projects/:id/invitations", invitationHandler.Create)
			protected.GET("/projects/:id/invitations", invitationHandler.List)
			protected.GET("/invitations/mine", invitationHandler.ListMine)
			protected.POST("/invitations/accept", invitationHandler.Accept)
			protected.POST("/invitations/:id/revoke", invitationHandler.Revoke)
			protected.POST("/invitations/:id/resend", invitationHandler.Resend)

			// Tasks
			protected.POST("/tasks", taskHandler.Create)
			protected.GET("/tasks/personal", taskHandler.ListPersonal)
			protected.GET("/tasks/:id", taskHandler.GetByID)
			protected.PUT("/tasks/:id", taskHandler.Update)
			protected.PUT("/tasks/:id/assignee", taskHandler.Assign)
			protected.DELETE("/tasks/:id", taskHandler.Delete)
			protected.GET("/projects/:id/tasks", taskHandler.ListProject)
			protected.GET("/projects/:id/board", taskHandler.Board)

			// Settings (admin only: SMTP credentials and the audit log)
			settings := protected.Group("/settings", middleware.AdminRequired())
			{
				settings.GET("/email", configHandler.GetEmailConfig)
				settings.PUT("/email", configHandler.UpdateEmailConfig)
				settings.GET("/logs", systemLogHandler.List)
			}
		}
	}
}
