package services

import (
	"sync"
)

// ChangeEvent is a realtime row change pushed to connected clients.
// Row carries the full row for inserts and updates, and just the
// identity for deletes.
type ChangeEvent struct {
	Table string      `json:"table"`
	Type  string      `json:"type"` // INSERT, UPDATE, DELETE
	Row   interface{} `json:"row"`
}

const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// ChangeHub manages SSE client connections and change broadcasting
type ChangeHub struct {
	clients map[string]chan ChangeEvent
	mu      sync.RWMutex
}

// NewChangeHub creates a new change hub instance
func NewChangeHub() *ChangeHub {
	return &ChangeHub{
		clients: make(map[string]chan ChangeEvent),
	}
}

// Subscribe registers a new client and returns a channel for receiving events
func (h *ChangeHub) Subscribe(clientID string) <-chan ChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Create buffered channel to prevent blocking
	ch := make(chan ChangeEvent, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client from the hub
func (h *ChangeHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients
func (h *ChangeHub) Publish(event ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		// Non-blocking send - drop event if client buffer is full
		select {
		case ch <- event:
		default:
			// Client is slow, skip this event
		}
	}
}

// ClientCount returns the number of connected clients
func (h *ChangeHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishInsert broadcasts a freshly created row.
func (h *ChangeHub) PublishInsert(table string, row interface{}) {
	h.Publish(ChangeEvent{Table: table, Type: EventInsert, Row: row})
}

// PublishUpdate broadcasts an updated row.
func (h *ChangeHub) PublishUpdate(table string, row interface{}) {
	h.Publish(ChangeEvent{Table: table, Type: EventUpdate, Row: row})
}

// PublishDelete broadcasts a row removal; only the identity is sent.
func (h *ChangeHub) PublishDelete(table, id string) {
	h.Publish(ChangeEvent{Table: table, Type: EventDelete, Row: map[string]string{"id": id}})
}
