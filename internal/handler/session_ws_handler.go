package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/pkg/serverutils"
	"interview-practice-be/internal/service"
	internalWS "interview-practice-be/internal/websocket"
)

// SessionWsHandler streams a session's state, speech events and elapsed
// ticks to its views.
type SessionWsHandler struct {
	service   service.IInterviewService
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewSessionWsHandler(service service.IInterviewService, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *SessionWsHandler {
	return &SessionWsHandler{
		service:   service,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// Upgrade rejects non-websocket requests and sessions that no longer exist.
func (h *SessionWsHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	sessionID, _ := c.Locals(serverutils.SessionIDLocal).(string)
	if _, ok := h.service.Snapshot(sessionID); !ok {
		return c.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "session not found"))
	}
	return c.Next()
}

func (h *SessionWsHandler) ServeWs(conn *websocket.Conn) {
	sessionID, _ := conn.Locals(serverutils.SessionIDLocal).(string)

	h.logger.Info("SessionWsHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
	internalWS.ServeWs(h.hub, conn, sessionID, h.service)
	h.logger.Info("SessionWsHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
}

func (h *SessionWsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", serverutils.SessionMiddleware(h.jwtSecret), h.Upgrade, websocket.New(h.ServeWs))
}
