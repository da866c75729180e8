package dashboard

import (
	"encoding/json"
	"sync"
	"time"

	"igire/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

// WebSocketClient implements Client over a gorilla websocket connection.
type WebSocketClient struct {
	ID            string
	UserID        string
	Role          models.Role
	InstitutionID string
	Conn          *websocket.Conn
	Hub           *Hub
	Send          chan models.DashboardEvent

	logger    *zap.Logger
	closeOnce sync.Once
}

func NewWebSocketClient(hub *Hub, conn *websocket.Conn, user *models.User, logger *zap.Logger) *WebSocketClient {
	c := &WebSocketClient{
		ID:     uuid.New().String(),
		UserID: user.ID,
		Role:   user.Role,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan models.DashboardEvent, sendBuffer),
		logger: logger,
	}
	if user.InstitutionID != nil {
		c.InstitutionID = *user.InstitutionID
	}
	return c
}

func (c *WebSocketClient) GetID() string                                { return c.ID }
func (c *WebSocketClient) GetRole() models.Role                         { return c.Role }
func (c *WebSocketClient) GetInstitutionID() string                     { return c.InstitutionID }
func (c *WebSocketClient) GetSendChannel() chan<- models.DashboardEvent { return c.Send }

func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// readPump only services control frames; dashboards never send data.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("dashboard read error", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				c.logger.Error("failed to encode dashboard event", zap.String("client_id", c.ID), zap.Error(err))
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
