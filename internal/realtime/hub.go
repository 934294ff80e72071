package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Notification names pushed to event rooms.
const (
	EventUpdated      = "event_updated"
	EventDeleted      = "event_deleted"
	QuestionSubmitted = "question_submitted"
	QuestionUpdated   = "question_updated"
	QuestionDeleted   = "question_deleted"
	SessionRecorded   = "session_recorded"
	ViewerCount       = "viewer_count"
)

// Publisher fans out an event-scoped notification. Implementations must not block callers.
type Publisher interface {
	Publish(eventID uuid.UUID, name string, payload interface{})
}

type discard struct{}

func (discard) Publish(uuid.UUID, string, interface{}) {}

// Discard drops every notification.
var Discard Publisher = discard{}

// OrDiscard returns p, or Discard when p is nil.
func OrDiscard(p Publisher) Publisher {
	if p == nil {
		return Discard
	}
	return p
}

// Hub maintains event_id -> set of connections and broadcasts messages.
// With Redis configured, publishes go through Redis so every instance delivers them once.
type Hub struct {
	// eventID -> map[clientID]*Client
	rooms    map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func() // cancel Redis subscription per event
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishEventMessage(eventID uuid.UUID, name string, payload []byte) error
}

// RedisSubscriber subscribes to event channels and invokes handler for incoming messages.
type RedisSubscriber interface {
	SubscribeEvent(eventID uuid.UUID, handler func(name string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. redisPub and redisSub may be nil for a single instance.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to an event room. Starts the Redis subscription for this event if first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.EventID] == nil {
		h.rooms[c.EventID] = make(map[string]*Client)
		if h.redisSub != nil {
			eventID := c.EventID
			cancel, err := h.redisSub.SubscribeEvent(eventID, func(name string, payload []byte) {
				h.BroadcastToEvent(eventID, name, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[eventID] = cancel
			} else {
				h.logger.Warn("redis subscribe failed", zap.String("event_id", eventID.String()), zap.Error(err))
			}
		}
	}
	h.rooms[c.EventID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined event", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// Unregister removes a client from an event room. Cancels the Redis subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.EventID]; ok {
		if _, present := m[c.ID]; present {
			delete(m, c.ID)
			close(c.send)
		}
		if len(m) == 0 {
			delete(h.rooms, c.EventID)
			if cancel, ok := h.subs[c.EventID]; ok {
				cancel()
				delete(h.subs, c.EventID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left event", zap.String("client_id", c.ID), zap.String("event_id", c.EventID.String()))
}

// BroadcastToEvent sends a message to all local clients in an event room.
func (h *Hub) BroadcastToEvent(eventID uuid.UUID, name string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal broadcast", zap.String("name", name), zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: name, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[eventID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip; the client still catches up by polling
		}
	}
}

// Publish sends through Redis when configured (the subscriber callback delivers locally),
// otherwise broadcasts to local clients only.
func (h *Hub) Publish(eventID uuid.UUID, name string, payload interface{}) {
	if h.redis == nil {
		h.BroadcastToEvent(eventID, name, payload)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal publish", zap.String("name", name), zap.Error(err))
		return
	}
	if err := h.redis.PublishEventMessage(eventID, name, data); err != nil {
		h.logger.Warn("redis publish failed, broadcasting locally", zap.String("name", name), zap.Error(err))
		h.BroadcastToEvent(eventID, name, json.RawMessage(data))
	}
}

// ViewerCount returns the number of connected clients in an event room on this instance.
func (h *Hub) ViewerCount(eventID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}
