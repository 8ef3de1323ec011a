// Package realtime maintains the registry of connected subscribers and the
// fan-out primitive used by the notification dispatcher. Subscribers each
// own a buffered channel; broadcast never blocks on a slow consumer.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/observability/metrics"
)

const sendBuffer = 16

// Subscriber is one live connection's view of the hub
type Subscriber struct {
	ID   string
	Role domain.Role
	send chan []byte
}

// Messages returns the channel the connection writer drains
func (s *Subscriber) Messages() <-chan []byte {
	return s.send
}

// Hub is the injected, thread-safe subscriber registry with explicit
// connect/disconnect lifecycle. Delivery is "whoever is currently
// connected", not reliable.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	logger      *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		logger:      logger,
	}
}

// Subscribe registers a connection and returns its subscriber handle
func (h *Hub) Subscribe(id string, role domain.Role) *Subscriber {
	sub := &Subscriber{
		ID:   id,
		Role: role,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.subscribers[id] = sub
	h.mu.Unlock()

	metrics.SubscriberConnected()
	h.logger.Debug("subscriber connected", slog.String("subscriber_id", id))
	return sub
}

// Unsubscribe removes a connection and closes its channel
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, exists := h.subscribers[id]
	if exists {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()

	if exists {
		close(sub.send)
		metrics.SubscriberDisconnected()
		h.logger.Debug("subscriber disconnected", slog.String("subscriber_id", id))
	}
}

// Broadcast delivers an event to every currently connected subscriber,
// unfiltered by role or relevance. Messages to a full subscriber buffer
// are dropped rather than blocking the caller.
func (h *Hub) Broadcast(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		select {
		case sub.send <- payload:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				slog.String("subscriber_id", sub.ID),
				slog.String("type", string(event.Type)),
			)
		}
	}
}

// BroadcastTo delivers an event only to subscribers matching the role,
// used by the analytics push to reach admins.
func (h *Hub) BroadcastTo(role domain.Role, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		if sub.Role != role {
			continue
		}
		select {
		case sub.send <- payload:
		default:
		}
	}
}

// Count returns the number of live subscribers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
