package services

import (
	"errors"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectService struct {
	db    *gorm.DB
	roles *RoleService
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db, roles: NewRoleService(db)}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// ProjectListItem pairs a project with the caller's role in it.
type ProjectListItem struct {
	models.Project
	Role authz.Role `json:"role"`
}

// ListMine returns all projects the user owns or is a member of, along with
// the user's role in each.
func (s *ProjectService) ListMine(userID uint) ([]ProjectListItem, error) {
	var owned []models.Project
	if err := s.db.Where("owner_id = ?", userID).Order("created_at DESC").Find(&owned).Error; err != nil {
		return nil, storageError(err)
	}

	var memberships []models.ProjectMember
	if err := s.db.Where("user_id = ?", userID).Preload("Project").Find(&memberships).Error; err != nil {
		return nil, storageError(err)
	}

	items := make([]ProjectListItem, 0, len(owned)+len(memberships))
	for _, p := range owned {
		items = append(items, ProjectListItem{Project: p, Role: authz.RoleOwner})
	}
	for _, m := range memberships {
		if m.Project == nil {
			continue
		}
		items = append(items, ProjectListItem{Project: *m.Project, Role: authz.Role(m.Role)})
	}
	return items, nil
}

// Get returns a project if the actor may view it.
func (s *ProjectService) Get(actorID, projectID uint) (*models.Project, error) {
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
	return &project, nil
}

// Create creates a project with the actor as its owner. The owner is not
// given a membership row; ownership lives on the project itself.
func (s *ProjectService) Create(actorID uint, req *CreateProjectRequest) (*models.Project, error) {
	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		OwnerID:     actorID,
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, storageError(err)
	}
	return &project, nil
}

// Update edits mutable project fields. Owners and collaborators only. The
// role is re-resolved here, immediately before the write.
func (s *ProjectService) Update(actorID, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	role, err := s.roles.Resolve(actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanProject(role, authz.EditProject) {
		return nil, PermissionDenied("you may not edit this project")
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		if *req.Name == "" {
			return nil, ValidationError("project name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, storageError(err)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&project).Updates(updates).Error; err != nil {
			return nil, storageError(err)
		}
	}
	return &project, nil
}

// SetArchived archives or restores a project. Owner only.
func (s *ProjectService) SetArchived(actorID, projectID uint, archived bool) (*models.Project, error) {
	role, err := s.roles.Resolve(actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanProject(role, authz.ArchiveProject) {
		return nil, PermissionDenied("only the project owner may archive or restore a project")
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, storageError(err)
	}

	if err := s.db.Model(&project).Update("archived", archived).Error; err != nil {
		return nil, storageError(err)
	}
	project.Archived = archived
	return &project, nil
}

// Delete removes a project together with its memberships, invitations and
// project tasks. Owner only.
func (s *ProjectService) Delete(actorID, projectID uint) error {
	role, err := s.roles.Resolve(actorID, projectID)
	if err != nil {
		return err
	}
	if !authz.CanProject(role, authz.DeleteProject) {
		return PermissionDenied("only the project owner may delete a project")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
	if err != nil {
		return storageError(err)
	}
	return nil
}

// TransferOwnership is the only operation that may change a project's owner.
// The new owner's membership row (if any) is removed since ownership is
// implicit, and the previous owner is kept on the project as a collaborator.
func (s *ProjectService) TransferOwnership(actorID, projectID, newOwnerID uint) (*models.Project, error) {
	if err := s.roles.RequireOwner(actorID, projectID); err != nil {
		return nil, err
	}
	if newOwnerID == actorID {
		return nil, ValidationError("project is already owned by this user")
	}

	var newOwner models.User
	if err := s.db.First(&newOwner, newOwnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, storageError(err)
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, storageError(err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, newOwnerID).
			Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		previous := models.ProjectMember{
			ProjectID: projectID,
			UserID:    actorID,
			Role:      string(authz.RoleCollaborator),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "deleted_at", "updated_at"}),
		}).Create(&previous).Error; err != nil {
			return err
		}

		return tx.Model(&project).Update("owner_id", newOwnerID).Error
	})
	if err != nil {
		return nil, storageError(err)
	}

	project.OwnerID = newOwnerID
	return &project, nil
}
