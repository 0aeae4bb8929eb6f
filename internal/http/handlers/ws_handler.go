package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/proposalpilot/backend/internal/logger"
	"github.com/proposalpilot/backend/internal/service"
	"github.com/proposalpilot/backend/internal/ws"
)

// WSHandler апгрейдит подключения дашборда до WebSocket.
type WSHandler struct {
	hub      *ws.Hub
	tokens   *service.TokenManager
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт хэндлер WebSocket.
func NewWSHandler(hub *ws.Hub, tokens *service.TokenManager) *WSHandler {
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Список origin проверяется CORS middleware на уровне роутера.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle обрабатывает GET /api/ws?token=<access>.
// Браузерный WebSocket не умеет ставить заголовки, поэтому токен идёт query-параметром.
func (h *WSHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	userID, err := h.tokens.ParseAccess(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if logger.Log != nil {
			logger.Log.Warnf("ws handler: не удалось апгрейдить соединение: %v", err)
		}
		return
	}

	client := ws.NewClient(conn, h.hub, userID)
	h.hub.Register(client)
	client.Run(c.Request.Context())
}
