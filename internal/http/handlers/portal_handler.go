package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proposalpilot/backend/internal/service"
)

// PortalHandler обслуживает публичный клиентский портал.
// Доступ только по share-токену, аутентификации нет.
type PortalHandler struct {
	portal *service.PortalService
}

// NewPortalHandler создаёт хэндлер портала.
func NewPortalHandler(portal *service.PortalService) *PortalHandler {
	return &PortalHandler{portal: portal}
}

// Fetch обрабатывает GET /portal/:token.
func (h *PortalHandler) Fetch(c *gin.Context) {
	view, err := h.portal.Fetch(c.Request.Context(), c.Param("token"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RecordView обрабатывает POST /portal/:token/view.
func (h *PortalHandler) RecordView(c *gin.Context) {
	var req struct {
		Duration *int `json:"duration"`
	}
	// Тело опционально: первый пинг при открытии страницы идёт без duration.
	_ = c.ShouldBindJSON(&req)

	err := h.portal.RecordView(c.Request.Context(), c.Param("token"), service.ViewInput{
		Duration:  req.Duration,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Sign обрабатывает POST /portal/:token/sign.
func (h *PortalHandler) Sign(c *gin.Context) {
	var req struct {
		Accepted      *bool  `json:"accepted" binding:"required"`
		SignerName    string `json:"signer_name"`
		SignerEmail   string `json:"signer_email"`
		SignatureData string `json:"signature_data"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.portal.Sign(c.Request.Context(), c.Param("token"), service.PortalSignInput{
		Accepted:      *req.Accepted,
		SignerName:    req.SignerName,
		SignerEmail:   req.SignerEmail,
		SignatureData: req.SignatureData,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": proposal.Status})
}
