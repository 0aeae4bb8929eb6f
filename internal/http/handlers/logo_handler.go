package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/proposalpilot/backend/internal/logger"
	"github.com/proposalpilot/backend/internal/storage"
)

// LogoRepository описывает зависимость хэндлера логотипа от хранилища пользователей.
type LogoRepository interface {
	UpdateLogo(ctx context.Context, userID uuid.UUID, logoURL string) error
}

// LogoHandler обслуживает загрузку логотипа бизнеса.
type LogoHandler struct {
	users LogoRepository
	files *storage.LogoStorage
}

// NewLogoHandler создаёт хэндлер логотипа.
func NewLogoHandler(users LogoRepository, files *storage.LogoStorage) *LogoHandler {
	return &LogoHandler{users: users, files: files}
}

// Upload обрабатывает POST /api/profile/logo.
// Тип файла проверяется по magic-байтам, расширению не доверяем.
func (h *LogoHandler) Upload(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer file.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}
	head = head[:n]

	if !filetype.IsImage(head) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo must be an image file"})
		return
	}

	reader := io.MultiReader(bytes.NewReader(head), file)
	fileName, err := h.files.Save(c.Request.Context(), userID, fileHeader.Filename, reader)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logoURL := "/media/logos/" + fileName
	if err := h.users.UpdateLogo(c.Request.Context(), userID, logoURL); err != nil {
		// Запись в БД не удалась — подчищаем осиротевший файл.
		if delErr := h.files.Delete(c.Request.Context(), fileName); delErr != nil && logger.Log != nil {
			logger.Log.Warnf("logo handler: не удалось удалить осиротевший файл %s: %v", fileName, delErr)
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logo_url": logoURL})
}
