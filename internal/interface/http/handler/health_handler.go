package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger: проверка доступности базы (*sqlx.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db       Pinger
	sessions func() int
	clients  func() int
	now      func() time.Time
}

// NewHealthHandler создаёт новый health handler. sessions и clients могут быть nil.
func NewHealthHandler(db Pinger, sessions, clients func() int) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions, clients: clients, now: time.Now}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Sessions  *int              `json:"wizard_sessions,omitempty"`
	Clients   *int              `json:"admin_ws_clients,omitempty"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	resp := HealthResponse{Status: status, Timestamp: h.now().UTC(), Checks: checks}
	if h.sessions != nil {
		n := h.sessions()
		resp.Sessions = &n
	}
	if h.clients != nil {
		n := h.clients()
		resp.Clients = &n
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, resp)
}
