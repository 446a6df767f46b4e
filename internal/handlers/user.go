package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

// UserHandler exposes user lookups used when picking members and assignees.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// Search finds users by username or email prefix
// GET /api/users/search?q=...
func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		response.BadRequest(c, "query must be at least 2 characters")
		return
	}

	var users []models.User
	if err := h.db.
		Where("username LIKE ? OR email LIKE ?", q+"%", q+"%").
		Limit(10).
		Find(&users).Error; err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, users)
}

// GetByID returns a user's public profile
// GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, &user)
}
