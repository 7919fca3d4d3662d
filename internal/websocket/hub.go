package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"interview-practice-be/internal/pkg/logger"
)

const (
	clusterChannel = "interview_session_events"

	redisPublishTimeout = 2 * time.Second
	redisQueueSize      = 256
)

// Hub fans session updates out to every socket watching that session, on
// this instance and, through redis, on the others.
type Hub struct {
	// SessionID -> sockets (a session may be open in several tabs)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client
	// outbound queues payloads for redis so Publish never waits on the network.
	outbound chan []byte

	// instance tags redis payloads so an instance skips its own messages.
	instance string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		outbound:   make(chan []byte, redisQueueSize),
		instance:   uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
		go h.forwardToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			if client.registered != nil {
				close(client.registered)
			}
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.SessionID]
			for i, c := range clients {
				if c == client {
					h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(h.clients[client.SessionID]) == 0 {
				delete(h.clients, client.SessionID)
				h.logger.Info("Hub", "Session has no more clients", map[string]interface{}{"session_id": client.SessionID})
			}
			h.mu.Unlock()
		}
	}
}

// Publish delivers msg to the session's local sockets and queues it for the
// other instances. It never blocks.
func (h *Hub) Publish(sessionID string, msg Message) {
	data := encode(msg)
	h.deliver(sessionID, data)

	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(clusterPayload{
		Origin:          h.instance,
		TargetSessionID: sessionID,
		Message:         data,
	})
	select {
	case h.outbound <- payload:
	default:
		h.logger.Warn("Hub", "Redis queue full, dropping message", map[string]interface{}{"session_id": sessionID})
	}
}

func (h *Hub) forwardToRedis(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-h.outbound:
			pubCtx, cancel := context.WithTimeout(ctx, redisPublishTimeout)
			err := h.rdb.Publish(pubCtx, clusterChannel, payload).Err()
			cancel()
			if err != nil {
				h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

// ClientCount returns the number of local sockets for a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// deliver never blocks; a socket whose buffer is full misses the frame.
func (h *Hub) deliver(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
		}
	}
}

type clusterPayload struct {
	Origin          string          `json:"origin"`
	TargetSessionID string          `json:"target_session_id"`
	Message         json.RawMessage `json:"message"`
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterPayload
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Origin == h.instance {
			continue
		}
		h.deliver(payload.TargetSessionID, payload.Message)
	}
}
