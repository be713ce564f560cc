package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub отслеживает все живые соединения плюс срез по пользователям для
// адресной доставки. Один пользователь может держать несколько соединений
// (несколько вкладок).
type Hub struct {
	mu     sync.Mutex
	all    map[*Client]struct{}
	byUser map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		all:    make(map[*Client]struct{}),
		byUser: make(map[int64]map[*Client]struct{}),
	}
}

// Register adds the client to the broadcast set and, for authenticated
// clients, to its user's connection set. Registration never fails.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[c] = struct{}{}
	if c.authenticated {
		set, ok := h.byUser[c.userID]
		if !ok {
			set = make(map[*Client]struct{})
			h.byUser[c.userID] = set
		}
		set[c] = struct{}{}
	}
}

// Unregister removes the client from both views and closes its send channel.
// Idempotent: every session exit path calls it, and broadcast may already
// have dropped the client from the `all` set. Empty per-user sets are
// deleted so byUser never holds stale keys.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.all, c)
	if c.authenticated {
		if set, ok := h.byUser[c.userID]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.byUser, c.userID)
			}
		}
	}
	h.mu.Unlock()

	c.closeSend()
}

// Broadcast delivers the event to every connection registered at call time.
// Sends are non-blocking: a client whose buffer is full loses the event and
// is removed from the broadcast set only. Its byUser entry stays until the
// client's own read pump exits and calls Unregister.
func (h *Hub) Broadcast(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("feed-service: marshal %s event: %v", ev.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.all {
		select {
		case c.send <- msg:
		default:
			delete(h.all, c)
		}
	}
}

// SendToUser delivers the event to every connection of one user. Failed
// sends are dropped without any cleanup; the connection's own lifecycle
// handles removal.
func (h *Hub) SendToUser(userID int64, ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("feed-service: marshal %s event: %v", ev.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.byUser[userID] {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.all)
}

func (h *Hub) UserConnectionCount(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byUser[userID])
}
