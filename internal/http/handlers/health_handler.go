package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler отвечает на проверки живости.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler создаёт хэндлер health-чеков.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check обрабатывает GET /health.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unavailable: " + err.Error()
		healthy = false
	} else {
		stats := h.db.Stats()
		checks["database"] = gin.H{
			"status":           "ok",
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"healthy": healthy,
		"checks":  checks,
		"time":    time.Now().UTC(),
	})
}
