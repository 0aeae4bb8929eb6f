package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/proposalpilot/backend/internal/models"
	"github.com/proposalpilot/backend/internal/service"
)

// ProposalHandler обслуживает владельческие операции над предложениями.
type ProposalHandler struct {
	proposals *service.ProposalService
	drafts    *service.DraftService
}

// NewProposalHandler создаёт хэндлер предложений.
func NewProposalHandler(proposals *service.ProposalService, drafts *service.DraftService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, drafts: drafts}
}

// proposalRequest — общее тело запроса создания и обновления.
type proposalRequest struct {
	Title         string                 `json:"title" binding:"required"`
	ClientName    string                 `json:"client_name" binding:"required"`
	ClientEmail   *string                `json:"client_email"`
	ClientCompany *string                `json:"client_company"`
	ClientPhone   *string                `json:"client_phone"`
	Industry      string                 `json:"industry" binding:"required"`
	Scope         string                 `json:"scope"`
	Deliverables  models.DeliverableList `json:"deliverables"`
	Timeline      models.MilestoneList   `json:"timeline"`
	Tax           float64                `json:"tax"`
	PricingNotes  string                 `json:"pricing_notes"`
	Terms         string                 `json:"terms"`
	Notes         *string                `json:"notes"`
	Status        string                 `json:"status"`
	ValidUntil    *time.Time             `json:"valid_until"`
}

func (r proposalRequest) toInput() service.ProposalInput {
	return service.ProposalInput{
		Title:         r.Title,
		ClientName:    r.ClientName,
		ClientEmail:   r.ClientEmail,
		ClientCompany: r.ClientCompany,
		ClientPhone:   r.ClientPhone,
		Industry:      r.Industry,
		Scope:         r.Scope,
		Deliverables:  r.Deliverables,
		Timeline:      r.Timeline,
		Tax:           r.Tax,
		PricingNotes:  r.PricingNotes,
		Terms:         r.Terms,
		Notes:         r.Notes,
		Status:        r.Status,
		ValidUntil:    r.ValidUntil,
	}
}

// List обрабатывает GET /api/proposals.
func (h *ProposalHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	proposals, err := h.proposals.List(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     len(proposals),
	})
}

// Get обрабатывает GET /api/proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	proposal, err := h.proposals.Get(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

// Create обрабатывает POST /api/proposals.
func (h *ProposalHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposals.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"proposal": proposal})
}

// Update обрабатывает PUT /api/proposals/:id.
func (h *ProposalHandler) Update(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposals.Update(c.Request.Context(), userID, id, req.toInput())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

// Delete обрабатывает DELETE /api/proposals/:id.
func (h *ProposalHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	if err := h.proposals.Delete(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Generate обрабатывает POST /api/proposals/generate.
// Возвращает черновик, не сохраняя его: владелец сначала редактирует.
func (h *ProposalHandler) Generate(c *gin.Context) {
	if _, err := currentUserID(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		JobDescription string `json:"job_description" binding:"required"`
		Industry       string `json:"industry" binding:"required"`
		ClientName     string `json:"client_name" binding:"required"`
		ClientCompany  string `json:"client_company"`
		BusinessName   string `json:"business_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.drafts.Generate(c.Request.Context(), service.DraftInput{
		JobDescription: req.JobDescription,
		Industry:       req.Industry,
		ClientName:     req.ClientName,
		ClientCompany:  req.ClientCompany,
		BusinessName:   req.BusinessName,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}
