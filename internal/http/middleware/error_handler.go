package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/proposalpilot/backend/internal/logger"
	"github.com/proposalpilot/backend/internal/repository"
	"github.com/proposalpilot/backend/internal/service"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Известные доменные ошибки получают свой статус, всё остальное
// маскируется в общий ответ сервера, чтобы не светить внутренности.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode, message := mapError(err.Err)
		c.JSON(statusCode, gin.H{"error": message})
	}
}

// mapError переводит доменную ошибку в HTTP статус и сообщение клиенту.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrProposalNotFound):
		return http.StatusNotFound, "proposal not found"
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrAlreadyResponded):
		return http.StatusConflict, "proposal already responded to"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "email is already registered"
	case errors.Is(err, service.ErrProposalLocked):
		return http.StatusConflict, "proposal is no longer editable"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
