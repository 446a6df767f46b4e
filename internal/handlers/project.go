package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// List returns the caller's projects with their role in each
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	items, err := h.projectService.ListMine(middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, items)
}

// GetByID returns a project by ID
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(middleware.GetUserID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, project)
}

// Create creates a new project owned by the caller
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, project)
}

// Update updates a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, project)
}

// Archive archives a project
// POST /api/projects/:id/archive
func (h *ProjectHandler) Archive(c *gin.Context) {
	h.setArchived(c, true)
}

// Restore restores an archived project
// POST /api/projects/:id/restore
func (h *ProjectHandler) Restore(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *ProjectHandler) setArchived(c *gin.Context, archived bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.SetArchived(middleware.GetUserID(c), id, archived)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, project)
}

type transferOwnershipRequest struct {
	NewOwnerID uint `json:"new_owner_id" binding:"required"`
}

// TransferOwnership moves a project to a new owner
// POST /api/projects/:id/transfer
func (h *ProjectHandler) TransferOwnership(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req transferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actorID := middleware.GetUserID(c)
	project, err := h.projectService.TransferOwnership(actorID, id, req.NewOwnerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.LogInfo("Projects", "TransferOwnership",
		"project ownership transferred", &actorID, c.ClientIP(), c.Request.UserAgent(),
		map[string]interface{}{"project_id": id, "new_owner_id": req.NewOwnerID})

	response.Success(c, project)
}

// Delete deletes a project and everything attached to it
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(middleware.GetUserID(c), id); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project deleted"})
}
