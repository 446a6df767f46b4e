package main

import (
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/handlers"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/internal/utils"
	"github.com/taskhive/taskhive/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	emailService *services.EmailService
	taskQueue    services.TaskQueue
	worker       *services.Worker
	sweeper      *services.InvitationSweeper
	authHandler  *handlers.AuthHandler
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

	// Create default admin account
	authService := services.NewAuthService(models.GetDB(), &cfg.JWT)
	if err := authService.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create default admin")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB())

	// Start invitation expiry sweeper
	sweeper := services.NewInvitationSweeper(models.GetDB())
	sweeper.Start()

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	emailService := services.NewEmailService(models.GetDB())
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.ProcessEmailTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.ProcessEmailTask)
			worker.Start()
		}
	}

	return &appServices{
		emailService: emailService,
		taskQueue:    taskQueue,
		worker:       worker,
		sweeper:      sweeper,
		authHandler:  handlers.NewAuthHandler(models.GetDB(), cfg),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.sweeper.Stop()
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
