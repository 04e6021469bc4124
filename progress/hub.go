// Package progress fans download progress out to subscribers by request id.
package progress

import (
	"sync"

	"ytdownloader/models"
)

const subscriberBuffer = 20

type Client struct {
	Channel chan models.Progress
}

// Hub holds the subscribers of every in-flight download.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Subscribe registers a listener for requestID.
func (h *Hub) Subscribe(requestID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	client := &Client{Channel: make(chan models.Progress, subscriberBuffer)}
	if h.clients[requestID] == nil {
		h.clients[requestID] = make(map[*Client]struct{})
	}
	h.clients[requestID][client] = struct{}{}
	return client
}

// Unsubscribe removes and closes one listener.
func (h *Hub) Unsubscribe(requestID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[requestID]
	if !ok {
		return
	}
	if _, ok := subs[client]; ok {
		close(client.Channel)
		delete(subs, client)
	}
	if len(subs) == 0 {
		delete(h.clients, requestID)
	}
}

// Publish delivers p to every listener of p.RequestID without blocking; a
// listener whose buffer is full misses the event.
func (h *Hub) Publish(p models.Progress) {
	if p.RequestID == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[p.RequestID] {
		select {
		case client.Channel <- p:
		default:
		}
	}
}

// Subscribers returns the number of listeners for requestID.
func (h *Hub) Subscribers(requestID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[requestID])
}
