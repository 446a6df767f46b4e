package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
	emailService  *services.EmailService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
		emailService:  services.NewEmailService(db),
	}
}

// GetEmailConfig returns the outbound mail settings with the password masked
// GET /api/settings/email
func (h *SystemConfigHandler) GetEmailConfig(c *gin.Context) {
	cfg := h.emailService.GetConfig()
	if cfg.Password != "" {
		cfg.Password = "******"
	}
	response.Success(c, cfg)
}

// UpdateEmailConfig updates the outbound mail settings
// PUT /api/settings/email
func (h *SystemConfigHandler) UpdateEmailConfig(c *gin.Context) {
	var req services.UpdateEmailConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateEmailConfig(&req); err != nil {
		handleServiceError(c, err)
		return
	}

	cfg := h.emailService.GetConfig()
	if cfg.Password != "" {
		cfg.Password = "******"
	}
	response.Success(c, cfg)
}
