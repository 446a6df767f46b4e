package services

import (
	"errors"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/models"
	"gorm.io/gorm"
)

// RoleService resolves a user's effective role in a project. Results are
// always read from the database; nothing is cached across requests, so a
// membership change is visible to the very next resolution.
type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// Resolve returns the user's effective role in the project, or
// authz.RoleNone when the user has no membership. The owner check runs
// first and wins unconditionally, even over a stale membership row for the
// same pair.
func (s *RoleService) Resolve(userID, projectID uint) (authz.Role, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.RoleNone, NotFound("project not found")
		}
		return authz.RoleNone, storageError(err)
	}

	if project.OwnerID == userID {
		return authz.RoleOwner, nil
	}

	var member models.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return authz.RoleNone, nil
	}
	if err != nil {
		return authz.RoleNone, storageError(err)
	}

	return authz.Role(member.Role), nil
}

// RequireOwner resolves the role and rejects anything but owner. Used by the
// invitation and membership paths, where every operation is owner-only.
func (s *RoleService) RequireOwner(userID, projectID uint) error {
	role, err := s.Resolve(userID, projectID)
	if err != nil {
		return err
	}
	if role != authz.RoleOwner {
		return PermissionDenied("only the project owner may perform this operation")
	}
	return nil
}
