package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is a real-time change notification pushed to a family's connected
// clients. Clients treat any event as a cue to refetch; the payload only
// says what changed.
type Event struct {
	Event    string `json:"event"`
	MemberID int64  `json:"member_id,omitempty"`
	ID       int64  `json:"id,omitempty"`
}

// Event names sent over the wire.
const (
	EventPointsChanged      = "points_changed"
	EventTasksChanged       = "tasks_changed"
	EventCompletionPending  = "completion_pending"
	EventCompletionResolved = "completion_resolved"
	EventMembersChanged     = "members_changed"
)

// Hub tracks connected clients grouped by family so broadcasts never leak
// across household boundaries.
type Hub struct {
	mu       sync.RWMutex
	families map[int64]map[*Client]struct{}
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		families: make(map[int64]map[*Client]struct{}),
		logger:   logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.families[c.familyID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.families[c.familyID] = clients
	}
	clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.families[c.familyID]
	if !ok {
		return
	}
	if _, ok := clients[c]; ok {
		delete(clients, c)
		close(c.send)
	}
	if len(clients) == 0 {
		delete(h.families, c.familyID)
	}
}

// Broadcast sends an event to every client of one family. Slow clients
// whose buffers are full miss the event rather than stall the rest.
func (h *Hub) Broadcast(familyID int64, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.families[familyID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of clients connected for a family.
func (h *Hub) ClientCount(familyID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.families[familyID])
}
