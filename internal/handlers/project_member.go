package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

// ProjectMemberHandler exposes membership management under a project.
type ProjectMemberHandler struct {
	memberService *services.MemberService
}

func NewProjectMemberHandler(db *gorm.DB) *ProjectMemberHandler {
	return &ProjectMemberHandler{
		memberService: services.NewMemberService(db),
	}
}

// List returns the owner and all members of a project
// GET /api/projects/:id/members
func (h *ProjectMemberHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.memberService.List(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, resp)
}

// Add attaches an existing user to a project
// POST /api/projects/:id/members
func (h *ProjectMemberHandler) Add(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Add(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, member)
}

// UpdateRole changes a member's role
// PUT /api/projects/:id/members/:userId
func (h *ProjectMemberHandler) UpdateRole(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req services.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.UpdateRole(middleware.GetUserID(c), projectID, userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, member)
}

// Remove detaches a member from a project
// DELETE /api/projects/:id/members/:userId
func (h *ProjectMemberHandler) Remove(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if err := h.memberService.Remove(middleware.GetUserID(c), projectID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed"})
}
