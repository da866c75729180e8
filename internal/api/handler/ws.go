package handler

import (
	"net/http"
	"net/url"
	"strings"

	"igire/backend/internal/api/middleware"
	"igire/backend/internal/dashboard"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// checkOrigin lets through requests without an Origin header (non-browser
// clients), pages served from this host and the configured AllowedOrigins.
// Browsers attach the auth cookie to cross-site upgrades, so anything else is refused.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if strings.EqualFold(strings.TrimSuffix(allowed, "/"), u.Scheme+"://"+u.Host) {
			return true
		}
	}
	return false
}

// ServeDashboard upgrades an authenticated staff request and streams complaint events.
func (h *Handler) ServeDashboard(c *gin.Context) {
	if h.Hub == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "live updates are disabled"})
		return
	}

	user, err := h.Store.GetUserByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := dashboard.NewWebSocketClient(h.Hub, conn, user, h.Logger)
	if !h.Hub.Register(client) {
		conn.Close()
	}
}
