package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mrskaggs/forkful/backend/internal/chat"
	"github.com/mrskaggs/forkful/backend/internal/identity"
)

// ChatHandler upgrades authenticated requests into chat gateway connections
type ChatHandler struct {
	hub      *chat.Hub
	provider identity.Provider
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(hub *chat.Hub, provider identity.Provider) *ChatHandler {
	return &ChatHandler{hub: hub, provider: provider}
}

// RegisterChatRoutes registers the websocket endpoint. The route is mounted
// outside the auth middleware: the handshake itself carries the credential.
func (h *ChatHandler) RegisterChatRoutes(e *echo.Echo) {
	e.GET("/ws", h.ServeWS)
}

// ServeWS resolves the handshake credential and upgrades the connection.
// An invalid or missing credential rejects the handshake outright; no room
// operation is reachable unauthenticated.
func (h *ChatHandler) ServeWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get("Authorization")
		if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			token = authHeader[len("Bearer "):]
		}
	}

	ident, err := h.provider.Resolve(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing credential")
	}

	return chat.ServeWS(h.hub, ident, c.Response(), c.Request())
}
