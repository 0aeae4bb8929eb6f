package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/proposalpilot/backend/internal/http/middleware"
)

var errUserNotInContext = errors.New("user not found in request context")

// currentUserID извлекает userID из контекста.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, errUserNotInContext
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, errUserNotInContext
	}

	return userID, nil
}

// requestMeta собирает метаданные запроса для сессий.
func requestMeta(c *gin.Context) map[string]string {
	return map[string]string{
		"user_agent": c.GetHeader("User-Agent"),
		"ip":         c.ClientIP(),
	}
}
