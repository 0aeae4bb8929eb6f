package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/proposalpilot/backend/internal/models"
	"github.com/proposalpilot/backend/internal/validation"
)

// ProfileRepository описывает зависимости хэндлера профиля от хранилища.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// ProfileHandler обслуживает бизнес-профиль владельца.
type ProfileHandler struct {
	users ProfileRepository
}

// NewProfileHandler создаёт хэндлер профиля.
func NewProfileHandler(users ProfileRepository) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// GetMe обрабатывает GET /api/profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe обрабатывает PUT /api/profile.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Name         string  `json:"name" binding:"required"`
		BusinessName *string `json:"business_name"`
		BusinessType *string `json:"business_type"`
		Phone        *string `json:"phone"`
		Address      *string `json:"address"`
		Website      *string `json:"website"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validation.ValidateLength("name", req.Name, validation.MinNameLength, validation.MaxNameLength); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Website != nil && *req.Website != "" {
		if err := validation.ValidateWebsite(*req.Website); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user.Name = req.Name
	user.BusinessName = req.BusinessName
	user.BusinessType = req.BusinessType
	user.Phone = req.Phone
	user.Address = req.Address
	user.Website = req.Website

	if err := h.users.UpdateProfile(c.Request.Context(), user); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
