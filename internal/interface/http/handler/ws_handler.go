package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Studio-Zurich/fix-app-sub000/internal/http/middleware"
	"github.com/Studio-Zurich/fix-app-sub000/internal/interface/http/response"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
	"github.com/Studio-Zurich/fix-app-sub000/internal/ws"
)

// WSHandler открывает поток событий для панели администратора.
type WSHandler struct {
	hub      *ws.Hub
	auth     middleware.Authenticator
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *ws.Hub, auth middleware.Authenticator, checkOrigin func(r *http.Request) bool) *WSHandler {
	return &WSHandler{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
	}
}

// Handle обслуживает GET /api/admin/ws?token=...
// Браузер не умеет ставить заголовок Authorization на WebSocket, поэтому токен идёт в query.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		response.Unauthorized(c, "access токен обязателен")
		return
	}

	admin, err := h.auth.Authenticate(c.Request.Context(), rawToken)
	if err != nil {
		response.Unauthorized(c, "невалидный access токен")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.Component("ws").WithError(err).Debug("рукопожатие не удалось")
		return
	}

	ws.NewClient(conn, h.hub, admin.ID).Run()
}
