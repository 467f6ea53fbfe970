package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is the envelope every live message travels in.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomEvent routes an event to one canteen room. An empty room name
// addresses only firehose listeners.
type roomEvent struct {
	Canteen string
	Event   Event
}

// Hub maintains the set of active clients and broadcasts order events
// to them. Clients subscribe either to a single canteen by name or,
// with no canteen, to every event.
type Hub struct {
	// Registered clients by canteen name; "" is the firehose room.
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan *roomEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
	}
}

// Run starts the hub's main loop.
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.canteen] == nil {
				h.rooms[client.canteen] = make(map[*Client]bool)
			}
			h.rooms[client.canteen][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.canteen]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.canteen)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			h.deliver(event.Canteen, message)
			if event.Canteen != "" {
				// Firehose listeners get everything.
				h.deliver("", message)
			}
			h.mu.Unlock()
		}
	}
}

// deliver fans a marshaled message out to one room. Callers hold h.mu.
func (h *Hub) deliver(room string, message []byte) {
	for client := range h.rooms[room] {
		select {
		case client.send <- message:
		default:
			// Client's send buffer is full, close and unregister.
			close(client.send)
			delete(h.rooms[room], client)
			if len(h.rooms[room]) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// BroadcastOrder sends an order event to the named canteen's room and
// to firehose listeners. Payloads that fail to marshal are dropped.
func (h *Hub) BroadcastOrder(canteenName, eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal ws payload: %v", err)
		return
	}
	h.broadcast <- &roomEvent{
		Canteen: canteenName,
		Event:   Event{Type: eventType, Payload: raw},
	}
}
