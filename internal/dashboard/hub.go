// Package dashboard pushes complaint events to connected admin and institution
// dashboards. Events travel through redis pub/sub so every server instance can
// fan them out to its own websocket clients.
package dashboard

import (
	"context"
	"encoding/json"
	"sync"

	"igire/backend/internal/metrics"
	"igire/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Hub struct {
	clients map[string]Client
	mu      sync.RWMutex

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan models.DashboardEvent

	done   chan struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan models.DashboardEvent, 64),
		done:         make(chan struct{}),
		logger:       logger,
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register hands c to the hub and starts it. It returns false once the hub has stopped.
func (h *Hub) Register(c Client) bool {
	select {
	case h.RegisterCh <- c:
		c.Run()
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c. Safe to call after the hub stopped.
func (h *Hub) Unregister(c Client) {
	select {
	case h.UnregisterCh <- c:
	case <-h.done:
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		for id, c := range h.clients {
			delete(h.clients, id)
			c.Close()
		}
		h.mu.Unlock()
		metrics.DashboardClients.Set(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.RegisterCh:
			h.mu.Lock()
			h.clients[c.GetID()] = c
			h.mu.Unlock()
			metrics.DashboardClients.Inc()
			h.logger.Debug("dashboard client registered", zap.String("client_id", c.GetID()), zap.String("role", string(c.GetRole())))

		case c := <-h.UnregisterCh:
			h.remove(c.GetID())

		case event := <-h.EventCh:
			h.broadcast(event)
		}
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if ok {
		c.Close()
		metrics.DashboardClients.Dec()
	}
}

func (h *Hub) broadcast(event models.DashboardEvent) {
	h.mu.RLock()
	var slow []string
	for id, c := range h.clients {
		if !wants(c, event) {
			continue
		}
		select {
		case c.GetSendChannel() <- event:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		h.logger.Warn("dropping slow dashboard client", zap.String("client_id", id))
		h.remove(id)
	}
}

// Listen forwards redis pub/sub payloads into the hub until msgs closes or ctx ends.
func (h *Hub) Listen(ctx context.Context, msgs <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var event models.DashboardEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Warn("bad dashboard event payload", zap.Error(err))
				continue
			}
			select {
			case h.EventCh <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
