package notifications

import (
	"context"
	"errors"
	"log"
	"sync"

	"circle/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	// Max connections per user
	maxConnsPerUser = 8
	// Max total connections
	maxTotalConns = 10000
)

var (
	errServerFull = errors.New("server connection limit reached")
	errUserFull   = errors.New("user connection limit reached")
	errHubClosed  = errors.New("notification hub is shut down")
)

// Hub maps userID to that user's open notification streams.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uuid.UUID]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates a new Hub instance for managing notification streams.
func NewHub() *Hub {
	return &Hub{conns: make(map[uuid.UUID]map[*Client]struct{})}
}

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, errServerFull
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, errUserFull
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.NotificationStreams.Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send channel. Safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	close(client.Send)
	h.totalConns--
	observability.NotificationStreams.Dec()
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Broadcast sends message to all connections for userID and returns how many accepted it.
func (h *Hub) Broadcast(userID uuid.UUID, message string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	data := []byte(message)
	for c := range h.conns[userID] {
		if c.TrySend(data) {
			delivered++
		}
	}
	return delivered
}

// Connections reports how many streams userID has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring subscribes the hub to every user channel on n and forwards
// each message to that user's connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		userID, ok := ParseUserChannel(channel)
		if !ok {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown closes every stream and refuses new registrations.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for userID, userConns := range h.conns {
		for client := range userConns {
			close(client.Send)
			observability.NotificationStreams.Dec()
		}
		delete(h.conns, userID)
	}
	h.totalConns = 0
	return nil
}
