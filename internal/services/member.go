package services

import (
	"errors"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberService manages project membership rows. The project owner is never
// one of them: ownership lives on the project record, so the guard here only
// has to reject attempts to route the owner's id through the membership
// endpoints.
type MemberService struct {
	db    *gorm.DB
	roles *RoleService
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db, roles: NewRoleService(db)}
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"` // collaborator, member, viewer
}

type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required"`
}

// MemberListResponse includes the implicit owner next to the stored
// membership rows.
type MemberListResponse struct {
	Owner   *models.User           `json:"owner"`
	Members []models.ProjectMember `json:"members"`
}

// guardOwnerTarget rejects any membership operation aimed at the project
// owner. The owner is not a membership row and can never be removed or
// demoted through this path; ownership only moves via the explicit transfer
// operation.
func (s *MemberService) guardOwnerTarget(projectID, targetUserID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("project not found")
		}
		return storageError(err)
	}
	if project.OwnerID == targetUserID {
		return Consistency("the project owner cannot be managed through membership operations")
	}
	return nil
}

// List returns the project's members. Any project role may view this, since
// it is part of viewing the project.
func (s *MemberService) List(actorID, projectID uint) (*MemberListResponse, error) {
	role, err := s.roles.Resolve(actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanProject(role, authz.ViewProject) {
		return nil, PermissionDenied("you do not have access to this project")
	}

	var project models.Project
	if err := s.db.Preload("Owner").First(&project, projectID).Error; err != nil {
		return nil, storageError(err)
	}

	var members []models.ProjectMember
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, storageError(err)
	}

	return &MemberListResponse{Owner: project.Owner, Members: members}, nil
}

// Add directly attaches a user to a project with the given role. Owner only;
// the invitation flow is the other legal path into this table.
func (s *MemberService) Add(actorID, projectID uint, req *AddMemberRequest) (*models.ProjectMember, error) {
	if err := s.roles.RequireOwner(actorID, projectID); err != nil {
		return nil, err
	}

	if !authz.ValidMemberRole(req.Role) {
		return nil, ValidationError("invalid role, must be 'collaborator', 'member' or 'viewer'")
	}

	if err := s.guardOwnerTarget(projectID, req.UserID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, storageError(err)
	}

	var existing models.ProjectMember
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, req.UserID).
		First(&existing).Error; err == nil {
		return nil, Consistency("user is already a member of this project")
	}

	// Upsert so a previously removed (soft-deleted) row is resurrected with
	// the new role instead of tripping the unique (project, user) index.
	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      req.Role,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "deleted_at", "updated_at"}),
	}).Create(&member).Error; err != nil {
		return nil, storageError(err)
	}

	if err := s.db.Preload("User").
		Where("project_id = ? AND user_id = ?", projectID, req.UserID).
		First(&member).Error; err != nil {
		return nil, storageError(err)
	}
	return &member, nil
}

// UpdateRole changes a member's role. Owner only; the owner itself is not a
// legal target.
func (s *MemberService) UpdateRole(actorID, projectID, memberUserID uint, req *UpdateMemberRequest) (*models.ProjectMember, error) {
	if err := s.roles.RequireOwner(actorID, projectID); err != nil {
		return nil, err
	}

	if !authz.ValidMemberRole(req.Role) {
		return nil, ValidationError("invalid role, must be 'collaborator', 'member' or 'viewer'")
	}

	if err := s.guardOwnerTarget(projectID, memberUserID); err != nil {
		return nil, err
	}

	var member models.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, memberUserID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("member not found")
	}
	if err != nil {
		return nil, storageError(err)
	}

	member.Role = req.Role
	if err := s.db.Save(&member).Error; err != nil {
		return nil, storageError(err)
	}

	s.db.Preload("User").First(&member, member.ID)
	return &member, nil
}

// Remove detaches a member from a project. Owner only; removing the owner is
// a consistency violation, not a membership change.
func (s *MemberService) Remove(actorID, projectID, memberUserID uint) error {
	if err := s.roles.RequireOwner(actorID, projectID); err != nil {
		return err
	}

	if err := s.guardOwnerTarget(projectID, memberUserID); err != nil {
		return err
	}

	var member models.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, memberUserID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("member not found")
	}
	if err != nil {
		return storageError(err)
	}

	if err := s.db.Delete(&member).Error; err != nil {
		return storageError(err)
	}
	return nil
}
