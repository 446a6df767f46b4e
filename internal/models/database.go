package models

import (
	"fmt"

	"github.com/taskhive/taskhive/internal/config"
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
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return MigrateAll(DB)
}

// MigrateAll migrates the full schema on the given connection.
func MigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Project{},
		&ProjectMember{},
		&Task{},
		&Invitation{},
		&RefreshToken{},
		&SystemConfig{},
		&SystemLog{},
		&SchedulerLock{},
	); err != nil {
		return err
	}

	// At most one pending invitation per (project, email) pair. A partial
	// unique index backs the invariant structurally so concurrent creates
	// cannot both insert; terminal rows for the same pair stay untouched.
	// MySQL has no partial indexes; there the supersede transaction alone
	// guards the pair.
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		return db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_invitation_pending_pair
			 ON invitations(project_id, email) WHERE status = 'pending'`,
		).Error
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default system configs if not exists
func SeedDefaultData() error {
	defaultConfigs := []SystemConfig{
		{Key: "email_enabled", Value: "false", Type: "bool", Group: "email", Label: "Enable Email Delivery"},
		{Key: "email_host", Value: "", Type: "string", Group: "email", Label: "SMTP Host"},
		{Key: "email_port", Value: "587", Type: "int", Group: "email", Label: "SMTP Port"},
		{Key: "email_username", Value: "", Type: "string", Group: "email", Label: "SMTP Username"},
		{Key: "email_password", Value: "", Type: "string", Group: "email", Label: "SMTP Password"},
		{Key: "email_from", Value: "", Type: "string", Group: "email", Label: "From Address"},
		{Key: "email_use_tls", Value: "false", Type: "bool", Group: "email", Label: "Use SSL/TLS"},
		{Key: "invite_base_url", Value: "http://localhost:8080", Type: "string", Group: "general", Label: "Invitation Link Base URL"},
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
