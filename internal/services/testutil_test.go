package services

import (
	"testing"

	"github.com/taskhive/taskhive/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database migrated with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    email,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, name string, ownerID uint) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:    name,
		OwnerID: ownerID,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return project
}

func addTestMember(t *testing.T, db *gorm.DB, projectID, userID uint, role string) *models.ProjectMember {
	t.Helper()

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
	return member
}
