package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

// InvitationHandler exposes the invitation lifecycle: create, list, look
// up by token, accept, revoke and resend.
type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(db *gorm.DB) *InvitationHandler {
	return &InvitationHandler{
		invitationService: services.NewInvitationService(db, services.GetTaskQueue()),
	}
}

// Create invites an email address to a project
// POST /api/projects/:id/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actorID := middleware.GetUserID(c)
	invitation, err := h.invitationService.Create(actorID, projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.LogInfo("Invitations", "Create", "invitation created for "+invitation.Email,
		&actorID, c.ClientIP(), c.Request.UserAgent(),
		map[string]interface{}{"project_id": projectID, "invitation_id": invitation.ID})

	response.Created(c, invitation)
}

// List returns a project's invitations with their effective statuses
// GET /api/projects/:id/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	invitations, err := h.invitationService.List(middleware.GetUserID(c), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, invitations)
}

// ListMine returns pending invitations addressed to the caller's email
// GET /api/invitations/mine
func (h *InvitationHandler) ListMine(c *gin.Context) {
	invitations, err := h.invitationService.ListMine(middleware.GetEmail(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, invitations)
}

// Lookup returns invitation details for an invite link token. Public, so
// the invitee can see what they were invited to before signing in.
// GET /api/invitations/lookup?token=...
func (h *InvitationHandler) Lookup(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.BadRequest(c, "token is required")
		return
	}

	invitation, err := h.invitationService.GetByToken(token)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, invitation)
}

type acceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// Accept consumes an invitation and adds the caller to the project
// POST /api/invitations/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actorID := middleware.GetUserID(c)
	result, err := h.invitationService.Accept(actorID, req.Token)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.LogInfo("Invitations", "Accept", "invitation accepted",
		&actorID, c.ClientIP(), c.Request.UserAgent(),
		map[string]interface{}{"invitation_id": result.Invitation.ID, "project_id": result.Invitation.ProjectID})

	response.Success(c, result)
}

// Revoke cancels a pending invitation
// POST /api/invitations/:id/revoke
func (h *InvitationHandler) Revoke(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	invitation, err := h.invitationService.Revoke(middleware.GetUserID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, invitation)
}

// Resend re-delivers a pending invitation, extending its expiry
// POST /api/invitations/:id/resend
func (h *InvitationHandler) Resend(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	invitation, err := h.invitationService.Resend(middleware.GetUserID(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Success(c, invitation)
}
