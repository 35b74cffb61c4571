package hub

import (
	"encoding/json"
	"sync"
)

// Event is a change notification for one storage key.
type Event struct {
	Type    string          `json:"type"`
	Key     string          `json:"key"`
	Version int64           `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// EventChanged is the only event type published by the store.
const EventChanged = "changed"

// Client is the receiving end of a subscription. It holds at most one
// pending message: a newer event replaces an unread older one.
type Client chan []byte

// subscriber is the hub's bookkeeping for one client. version is the newest
// event version handed to it; versions only move forward per client.
type subscriber struct {
	origin  string
	version int64
}

// Hub fans out key changes to subscribers. Subscribers are tagged with the
// origin (the writing client) they belong to, so a writer is never notified of
// its own writes.
type Hub struct {
	topics map[string]map[Client]*subscriber
	mu     sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[Client]*subscriber),
	}
}

// Subscribe registers a new client for key on behalf of origin.
func (h *Hub) Subscribe(key, origin string) Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	client := make(Client, 1)
	if _, ok := h.topics[key]; !ok {
		h.topics[key] = make(map[Client]*subscriber)
	}
	h.topics[key][client] = &subscriber{origin: origin}
	return client
}

// Unsubscribe removes a client from key and closes its channel.
func (h *Hub) Unsubscribe(key string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.topics[key]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
			if len(clients) == 0 {
				delete(h.topics, key)
			}
		}
	}
}

// Subscribers returns the number of clients listening on key.
func (h *Hub) Subscribers(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[key])
}

// Broadcast sends event to every client of event.Key except those registered
// under origin. An empty origin reaches everyone. Versions only move forward
// per client: an event at or below the last version handed to a client is
// dropped.
func (h *Hub) Broadcast(origin string, event Event) error {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client, sub := range h.topics[event.Key] {
		if origin != "" && sub.origin == origin {
			continue
		}
		if event.Version <= sub.version {
			continue
		}
		sub.version = event.Version
		deliver(client, messageBytes)
	}
	return nil
}

// Rewind forgets the versions handed to every client, so the next event of
// each key is delivered whatever its version. The store calls it when its
// version sequence restarts from the backend's after running on local state.
func (h *Hub) Rewind() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.topics {
		for _, sub := range clients {
			sub.version = 0
		}
	}
}

// deliver never blocks. A slow client loses the intermediate event it has not
// read yet, never the latest one.
func deliver(client Client, msg []byte) {
	select {
	case client <- msg:
		return
	default:
	}
	select {
	case <-client:
	default:
	}
	select {
	case client <- msg:
	default:
	}
}

// Decode parses a message received on a Client.
func Decode(msg []byte) (Event, error) {
	var event Event
	err := json.Unmarshal(msg, &event)
	return event, err
}
