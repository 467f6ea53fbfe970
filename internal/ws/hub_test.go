package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, canteen string) *Client {
	return &Client{
		hub:     hub,
		id:      uuid.New(),
		canteen: canteen,
		send:    make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub, "Main Cafeteria")

	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms["Main Cafeteria"] == nil {
		t.Fatal("canteen room not created")
	}
	if !hub.rooms["Main Cafeteria"][client] {
		t.Fatal("client not registered in canteen room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub, "Main Cafeteria")

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms["Main Cafeteria"] != nil {
		t.Fatal("canteen room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleCanteen(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub, "Main Cafeteria")
	client2 := mockClient(hub, "Snack Corner")

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastOrder("Main Cafeteria", "order.created", map[string]string{"id": "0042"})

	// Check client1 receives the message
	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != "order.created" {
			t.Errorf("expected type 'order.created', got '%s'", received.Type)
		}
		var payload map[string]string
		if err := json.Unmarshal(received.Payload, &payload); err != nil {
			t.Fatalf("failed to unmarshal payload: %v", err)
		}
		if payload["id"] != "0042" {
			t.Errorf("expected order 0042, got %s", payload["id"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	// Check client2 does NOT receive the message
	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for different canteen")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestFirehoseReceivesEverything(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	scoped := mockClient(hub, "Main Cafeteria")
	firehose := mockClient(hub, "")

	hub.register <- scoped
	hub.register <- firehose
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastOrder("Main Cafeteria", "order.status_updated", map[string]string{"status": "Completed"})

	for name, client := range map[string]*Client{"scoped": scoped, "firehose": firehose} {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("%s: unmarshal error: %v", name, err)
			}
			if received.Type != "order.status_updated" {
				t.Errorf("%s: wrong event type %s", name, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("%s client did not receive message", name)
		}
	}
}

func TestBroadcastToMultipleClientsInSameCanteen(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub, "Main Cafeteria")
	client2 := mockClient(hub, "Main Cafeteria")
	client3 := mockClient(hub, "Main Cafeteria")

	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastOrder("Main Cafeteria", "order.created", map[string]string{"id": "0001"})

	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "order.created" {
				t.Errorf("client%d: expected type 'order.created', got '%s'", i+1, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestHubMultipleCanteensIsolation(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	rooms := []string{"North Cafeteria", "South Cafeteria", "Snack Corner"}

	// Two clients per canteen
	clients := make(map[string][]*Client)
	for _, room := range rooms {
		clients[room] = []*Client{mockClient(hub, room), mockClient(hub, room)}
		for _, c := range clients[room] {
			hub.register <- c
		}
	}
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastOrder("South Cafeteria", "order.created", map[string]string{"id": "0099"})

	for room, clientList := range clients {
		for i, client := range clientList {
			select {
			case msg := <-client.send:
				if room != "South Cafeteria" {
					t.Fatalf("canteen %s client %d should not receive message", room, i)
				}
				var received Event
				if err := json.Unmarshal(msg, &received); err != nil {
					t.Fatalf("unmarshal error: %v", err)
				}
				if received.Type != "order.created" {
					t.Errorf("wrong event type: %s", received.Type)
				}
			case <-time.After(50 * time.Millisecond):
				if room == "South Cafeteria" {
					t.Fatalf("South Cafeteria client %d should have received message", i)
				}
				// Expected for other canteens
			}
		}
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub, "Main Cafeteria")
	client2 := mockClient(hub, "Main Cafeteria")

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms["Main Cafeteria"]) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(hub.rooms["Main Cafeteria"]))
	}
	hub.mu.RUnlock()

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms["Main Cafeteria"]) != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", len(hub.rooms["Main Cafeteria"]))
	}
	hub.mu.RUnlock()

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if hub.rooms["Main Cafeteria"] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
	hub.mu.RUnlock()
}

func TestBroadcastToNonExistentCanteen(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub, "Main Cafeteria")
	hub.register <- client1
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastOrder("Ghost Canteen", "order.created", map[string]string{"test": "data"})

	// client1 should NOT receive anything
	select {
	case <-client1.send:
		t.Fatal("client should not receive message for different canteen")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message
	}
}
