package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a real-time event broadcast to a family's connected clients.
type Message struct {
	Type    string         `json:"type"`
	Entity  string         `json:"entity,omitempty"`
	Action  string         `json:"action,omitempty"`
	ID      int64          `json:"id,omitempty"`
	UserID  int64          `json:"user_id,omitempty"`
	Name    string         `json:"name,omitempty"`
	Payload any            `json:"payload,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// NewMessage creates an entity change Message with the Type derived from
// entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub maintains the active connections grouped into per-family rooms.
// Messages never cross family boundaries.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client and announces the member to their family if this is
// their first connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	first := !h.userOnlineLocked(c.familyID, c.userID)
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if first {
		h.BroadcastToFamily(c.familyID, Message{
			Type:   "presence_join",
			UserID: c.userID,
			Name:   c.name,
		})
	}
}

// Unregister removes a client, closes its send channel, and announces the
// departure once the member's last connection is gone.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	last := !h.userOnlineLocked(c.familyID, c.userID)
	h.mu.Unlock()

	if last {
		h.BroadcastToFamily(c.familyID, Message{
			Type:   "presence_leave",
			UserID: c.userID,
			Name:   c.name,
		})
	}
}

func (h *Hub) userOnlineLocked(familyID, userID int64) bool {
	for c := range h.clients {
		if c.familyID == familyID && c.userID == userID {
			return true
		}
	}
	return false
}

// BroadcastToFamily sends a message to every client in the family's room.
func (h *Hub) BroadcastToFamily(familyID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.familyID != familyID {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop rather than block the hub
		}
	}
}

// BroadcastActivity publishes a domain event (assignment settled, achievement
// unlocked) to the family's room.
func (h *Hub) BroadcastActivity(familyID int64, event string, payload any) {
	h.BroadcastToFamily(familyID, Message{Type: event, Payload: payload})
}

// OnlineUserIDs returns the distinct members of a family with at least one
// open connection.
func (h *Hub) OnlineUserIDs(familyID int64) []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[int64]bool)
	var ids []int64
	for c := range h.clients {
		if c.familyID != familyID || seen[c.userID] {
			continue
		}
		seen[c.userID] = true
		ids = append(ids, c.userID)
	}
	return ids
}

// ClientCount returns the number of open connections across all families.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
