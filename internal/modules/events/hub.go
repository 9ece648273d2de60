package events

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is the wire format pushed to availability subscribers.
type Event struct {
	PlaceID   int64     `json:"place_id"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans availability events out to the websocket subscribers of
// each place. A place can have any number of subscribers.
type Hub struct {
	subscribers map[int64]map[*websocket.Conn]struct{}
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Subscribe(placeID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns, ok := h.subscribers[placeID]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		h.subscribers[placeID] = conns
	}
	conns[conn] = struct{}{}
}

func (h *Hub) Unsubscribe(placeID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conns, ok := h.subscribers[placeID]; ok {
		if _, exists := conns[conn]; exists {
			_ = conn.Close()
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.subscribers, placeID)
		}
	}
}

// Publish sends the event to every subscriber of the place. Writes
// that fail drop the connection.
func (h *Hub) Publish(placeID int64, eventType string, payload any) {
	evt := Event{
		PlaceID:   placeID,
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	h.mutex.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subscribers[placeID]))
	for conn := range h.subscribers[placeID] {
		conns = append(conns, conn)
	}
	h.mutex.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(evt); err != nil {
			h.Unsubscribe(placeID, conn)
		}
	}
}

func (h *Hub) SubscriberCount(placeID int64) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.subscribers[placeID])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for placeID, conns := range h.subscribers {
		for conn := range conns {
			_ = conn.Close()
		}
		delete(h.subscribers, placeID)
	}
}
