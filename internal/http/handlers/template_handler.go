package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proposalpilot/backend/internal/templates"
)

// TemplateHandler отдаёт встроенный каталог отраслевых шаблонов.
type TemplateHandler struct {
	registry *templates.Registry
}

// NewTemplateHandler создаёт хэндлер шаблонов.
func NewTemplateHandler(registry *templates.Registry) *TemplateHandler {
	return &TemplateHandler{registry: registry}
}

// templateView — публичная проекция шаблона: prompt_context фронтенду не нужен.
type templateView struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Icon               string   `json:"icon"`
	Description        string   `json:"description"`
	DefaultTerms       string   `json:"default_terms"`
	SampleDeliverables []string `json:"sample_deliverables"`
}

// List обрабатывает GET /api/templates.
func (h *TemplateHandler) List(c *gin.Context) {
	all := h.registry.List()

	views := make([]templateView, 0, len(all))
	for _, t := range all {
		views = append(views, templateView{
			ID:                 t.ID,
			Name:               t.Name,
			Icon:               t.Icon,
			Description:        t.Description,
			DefaultTerms:       t.DefaultTerms,
			SampleDeliverables: t.SampleDeliverables,
		})
	}

	c.JSON(http.StatusOK, gin.H{"templates": views})
}
