package ws

import (
	"sync"
)

type Conn interface {
	ID() string
	RoomID() string // empty until the connection joins a room
	Send(msg Message) error
	Close() error
}

// Hub tracks open connections and their room subscriptions. Sends are
// best-effort; a failing connection never blocks delivery to the others.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn            // connID -> conn
	rooms map[string]map[string]Conn // roomID -> connID -> conn
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Conn),
		rooms: make(map[string]map[string]Conn),
	}
}

// Register tracks a freshly upgraded connection, before any room join.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID()] = c
}

// Subscribe adds the connection to its room's broadcast group.
func (h *Hub) Subscribe(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[c.RoomID()]
	if !ok {
		rs = make(map[string]Conn)
		h.rooms[c.RoomID()] = rs
	}
	rs[c.ID()] = c
}

// Remove drops the connection from the conn index and, if joined, from its
// room group.
func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, c.ID())
	if roomID := c.RoomID(); roomID != "" {
		if rs, ok := h.rooms[roomID]; ok {
			delete(rs, c.ID())
			if len(rs) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

func (h *Hub) Broadcast(roomID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.rooms[roomID] {
		_ = c.Send(msg) // best-effort
	}
}

// BroadcastExcept delivers to every room member except one connection,
// typically the sender.
func (h *Hub) BroadcastExcept(roomID, exceptConnID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.rooms[roomID] {
		if id == exceptConnID {
			continue
		}
		_ = c.Send(msg)
	}
}

// SendTo delivers to a single connection. Reports false when the connection
// is no longer tracked.
func (h *Hub) SendTo(connID string, msg Message) bool {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	return c.Send(msg) == nil
}
